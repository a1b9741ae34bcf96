package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/app"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/domain/workflow"
)

func main() {
	var staffID string
	var role string
	var ttl time.Duration
	flag.StringVar(&staffID, "staff", "", "staff user id (uuid)")
	flag.StringVar(&role, "role", "editor", "editor, moderator, admin or owner")
	flag.DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	id, err := uuid.Parse(strings.TrimSpace(staffID))
	if err != nil || id == uuid.Nil {
		fmt.Println("a valid -staff uuid is required")
		os.Exit(2)
	}
	r, err := workflow.ParseRole(role)
	if err != nil {
		fmt.Printf("parse role: %v\n", err)
		os.Exit(2)
	}

	application, err := app.New(context.Background())
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	tok, err := application.Services.Auth.IssueToken(workflow.Principal{ID: id, Role: r}, ttl)
	if err != nil {
		fmt.Printf("issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
