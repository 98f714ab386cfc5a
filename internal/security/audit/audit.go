package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, role, username, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("role", role),
		slog.String("username", username),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogLogin(ctx context.Context, role, username, status, details string) {
	al.LogAction(ctx, role, username, "login", "session", "", status, details)
}

func (al *Logger) LogRegistration(ctx context.Context, studioUsername, clientUsername, status, details string) {
	al.LogAction(ctx, "studio", studioUsername, "register_client", "client", clientUsername, status, details)
}

func (al *Logger) LogPlanSaved(ctx context.Context, studioUsername, clientUsername, status string) {
	al.LogAction(ctx, "studio", studioUsername, "save_plan", "plan", clientUsername, status, "")
}
