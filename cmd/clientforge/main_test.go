package main

import (
	"testing"

	"github.com/Strob0t/ClientForge/internal/config"
)

func TestAlertChannels(t *testing.T) {
	if got := alertChannels(&config.Alerts{}); len(got) != 0 {
		t.Fatalf("expected no channels, got %d", len(got))
	}

	got := alertChannels(&config.Alerts{
		SlackWebhookURL:   "https://hooks.slack.com/services/x",
		DiscordWebhookURL: "https://discord.com/api/webhooks/x",
		SMTPHost:          "smtp.example.com",
		SMTPFrom:          "crm@example.com",
		EmailTo:           []string{"team@example.com"},
	})
	var names []string
	for _, n := range got {
		names = append(names, n.Name())
	}
	if len(names) != 3 || names[0] != "slack" || names[1] != "discord" || names[2] != "email" {
		t.Errorf("unexpected channels %v", names)
	}
}

func TestBuildVaultWithoutSecret(t *testing.T) {
	cfg := config.Defaults()
	vault, err := buildVault(&cfg)
	if err != nil || vault != nil {
		t.Fatalf("expected no vault without a secret, got %v, %v", vault, err)
	}
}
