package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "client":
		handleClient(args)
	case "plan":
		handlePlan(args)
	case "settings":
		handleSettings(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: studioportal auth <login|logout|who>")
		return
	}

	switch args[0] {
	case "login":
		login(args[1:])
	case "logout":
		logout()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", args[0])
	}
}

func handleClient(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: studioportal client <list|register|links>")
		return
	}

	switch args[0] {
	case "list":
		listClients()
	case "register":
		registerClient(args[1:])
	case "links":
		shareLinks(args[1:])
	default:
		fmt.Printf("unknown client command: %s\n", args[0])
	}
}

func handlePlan(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: studioportal plan <history|current>")
		return
	}

	switch args[0] {
	case "history":
		planHistory(args[1:])
	case "current":
		planCurrent()
	default:
		fmt.Printf("unknown plan command: %s\n", args[0])
	}
}

func handleSettings(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: studioportal settings <show>")
		return
	}

	switch args[0] {
	case "show":
		showSettings()
	default:
		fmt.Printf("unknown settings command: %s\n", args[0])
	}
}

// Auth commands
func login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	role := fs.String("role", "studio", "principal role (studio or client)")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *username == "" || *password == "" {
		fmt.Println("Error: username and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"role": *role, "username": *username, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s (%s)\n", *username, *role)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logout() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/logout", nil)
	addAuthHeader(req)
	http.DefaultClient.Do(req)
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	token := loadToken()
	if token == "" {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("✓ Logged in (token: %s...)\n", token[:20])
}

// Client commands
func listClients() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/clients", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var clients []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&clients)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tGOAL\tEMAIL\tPHONE")
	for _, c := range clients {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", c["username"], c["fullName"], c["goal"], c["email"], c["phone"])
	}
	w.Flush()
}

func registerClient(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "client username")
	password := fs.String("password", "", "client password")
	fullName := fs.String("name", "", "full name")
	goal := fs.String("goal", "", "goal")
	email := fs.String("email", "", "email")
	phone := fs.String("phone", "", "phone")

	fs.Parse(args)

	if *username == "" || *password == "" {
		fmt.Println("Error: username and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"username": *username,
		"password": *password,
		"fullName": *fullName,
		"goal":     *goal,
		"email":    *email,
		"phone":    *phone,
	}
	data, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", getAPIURL()+"/clients", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Client registered: %s\n", *username)
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func shareLinks(args []string) {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	client := fs.String("client", "", "client username")

	fs.Parse(args)

	if *client == "" {
		fmt.Println("Error: client is required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/share-links?client="+*client, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var links map[string]string
	json.NewDecoder(resp.Body).Decode(&links)
	if links["whatsapp"] != "" {
		fmt.Printf("WhatsApp: %s\n", links["whatsapp"])
	}
	if links["mailto"] != "" {
		fmt.Printf("Email:    %s\n", links["mailto"])
	}
}

// Plan commands
func planHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	client := fs.String("client", "", "client username")

	fs.Parse(args)

	if *client == "" {
		fmt.Println("Error: client is required")
		fs.PrintDefaults()
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/clients/"+*client+"/plans", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var plans []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&plans)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ASSIGNED\tNOTE\tPLAN")
	for _, p := range plans {
		fmt.Fprintf(w, "%v\t%v\t%.60v\n", p["assignedAt"], p["internalNote"], p["planText"])
	}
	w.Flush()
}

func planCurrent() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/plans/current", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var plan map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&plan)
	if resp.StatusCode == 200 {
		fmt.Printf("Assigned: %v\n\n%v\n", plan["assignedAt"], plan["planText"])
	} else {
		fmt.Printf("✗ %v\n", plan["error"])
	}
}

// Settings commands
func showSettings() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/settings", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var settings map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&settings)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, key := range []string{"displayName", "logoUrl", "styleGuide", "enrollmentDate", "paid"} {
		fmt.Fprintf(w, "%s\t%v\n", key, settings[key])
	}
	w.Flush()
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("STUDIOPORTAL_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.studioportal/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.studioportal", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`StudioPortal CLI

Usage:
  studioportal <command> [options]

Commands:
  auth      Authentication (login, logout, who)
  client    Client roster (list, register, links) - studio sessions
  plan      Plans (history -client <name>, current) - current requires a client session
  settings  Studio profile (show)
  help      Show this help message

Environment Variables:
  STUDIOPORTAL_API    API endpoint (default: http://localhost:8080/api)

Examples:
  studioportal auth login -role studio -username acme -password secret
  studioportal client list
  studioportal client links -client mario
  studioportal plan history -client mario
`)
}
