package domain

import "context"

// Row is one normalized record from the shared tabular store. Every value is
// text: the backend has no schema, so typed interpretation happens in the
// record constructors below, never in callers.
type Row map[string]string

// Table names in the shared store.
const (
	TableStudios = "CONFIG_STUDIOS"
	TableClients = "CLIENTS"
	TablePlans   = "PLANS"
)

// Role identifies the kind of authenticated principal.
type Role string

const (
	RoleStudio Role = "studio"
	RoleClient Role = "client"
)

// Studio is a service-provider tenant (one row in CONFIG_STUDIOS).
//
// Password is stored and compared in plaintext. That is the external data
// contract of a hand-edited sheet, preserved here; it is a known security
// defect for any production deployment.
type Studio struct {
	Username       string
	Password       string
	DisplayName    string
	LogoURL        string
	StyleGuide     string
	EnrollmentDate string // free text, parsed leniently by the trial gate
	Paid           string // "SI" means paid, anything else means unpaid
}

// StudioFromRow builds a Studio from a normalized row.
func StudioFromRow(r Row) Studio {
	return Studio{
		Username:       r["username"],
		Password:       r["password"],
		DisplayName:    r["display_name"],
		LogoURL:        optional(r["logo_url"]),
		StyleGuide:     r["style_guide"],
		EnrollmentDate: r["enrollment_date"],
		Paid:           r["paid"],
	}
}

// Row converts the studio back to its stored representation.
func (s Studio) Row() Row {
	return Row{
		"username":        s.Username,
		"password":        s.Password,
		"display_name":    s.DisplayName,
		"logo_url":        s.LogoURL,
		"style_guide":     s.StyleGuide,
		"enrollment_date": s.EnrollmentDate,
		"paid":            s.Paid,
	}
}

// Client is an end-user principal (one row in CLIENTS).
type Client struct {
	Username       string
	Password       string
	FullName       string
	StudioUsername string // reference to Studio.Username, no integrity enforced
	PhysicalData   string
	Goal           string
	Email          string
	Phone          string
}

// ClientFromRow builds a Client from a normalized row. Spreadsheet exports
// stringify empty numeric cells as "nan"; those fields are treated as absent.
func ClientFromRow(r Row) Client {
	return Client{
		Username:       r["username"],
		Password:       r["password"],
		FullName:       r["full_name"],
		StudioUsername: r["tenant_username"],
		PhysicalData:   optional(r["physical_data"]),
		Goal:           optional(r["goal"]),
		Email:          optional(r["email"]),
		Phone:          optional(r["phone"]),
	}
}

// Row converts the client back to its stored representation.
func (c Client) Row() Row {
	return Row{
		"username":        c.Username,
		"password":        c.Password,
		"full_name":       c.FullName,
		"tenant_username": c.StudioUsername,
		"physical_data":   c.PhysicalData,
		"goal":            c.Goal,
		"email":           c.Email,
		"phone":           c.Phone,
	}
}

// PlanRecord is one generated document in the append-only PLANS history.
// AssignedAt is write-time-determined text and is never validated on read:
// "current plan" is decided by table order, not by this value.
type PlanRecord struct {
	ClientUsername string
	AssignedAt     string
	PlanText       string
	InternalNote   string
}

// PlanRecordFromRow builds a PlanRecord from a normalized row.
func PlanRecordFromRow(r Row) PlanRecord {
	return PlanRecord{
		ClientUsername: r["client_username"],
		AssignedAt:     r["assigned_at"],
		PlanText:       r["plan_text"],
		InternalNote:   r["internal_note"],
	}
}

// Row converts the record back to its stored representation.
func (p PlanRecord) Row() Row {
	return Row{
		"client_username": p.ClientUsername,
		"assigned_at":     p.AssignedAt,
		"plan_text":       p.PlanText,
		"internal_note":   p.InternalNote,
	}
}

func optional(v string) string {
	if v == "nan" || v == "NaN" {
		return ""
	}
	return v
}

// TableStore abstracts the shared tabular backend. Read never reports
// transport failures: an unreachable table and an empty table are both an
// empty slice, a deliberate simplification logged inside the store layer.
type TableStore interface {
	Read(ctx context.Context, table string) []Row
	Append(ctx context.Context, table string, row Row) error
	Overwrite(ctx context.Context, table string, rows []Row) error
}

// StudioRepository defines data access for studios.
type StudioRepository interface {
	Authenticate(ctx context.Context, username, password string) (*Studio, error)
	FindByUsername(ctx context.Context, username string) (*Studio, error)
	UpdateSettings(ctx context.Context, studio Studio) error
}

// ClientRepository defines data access for clients.
type ClientRepository interface {
	Authenticate(ctx context.Context, username, password string) (*Client, error)
	FindByUsername(ctx context.Context, username string) (*Client, error)
	ListByStudio(ctx context.Context, studioUsername string) []Client
	Create(ctx context.Context, client Client) error
	UpdateContact(ctx context.Context, username, phone, email string) error
}

// PlanRepository defines access to the append-only plan history.
type PlanRepository interface {
	ListFor(ctx context.Context, clientUsername string) []PlanRecord
	Current(ctx context.Context, clientUsername string) (*PlanRecord, bool)
	Append(ctx context.Context, record PlanRecord) error
}
