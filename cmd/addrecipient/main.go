// Command addrecipient appends a recipient to the notification list.
// The list is append-only; duplicate ids are rejected.
package main

import (
	"errors"
	"fmt"
	"os"

	"hort_notification_bot/internal/domain/recipient"
	"hort_notification_bot/internal/infra/storage"

	"github.com/alecthomas/kong"
)

var CLI struct {
	ID   string `arg:"" help:"Phone number (individual) or group identifier (group)"`
	Kind string `arg:"" enum:"individual,group" help:"Recipient kind: individual or group"`
	File string `short:"f" help:"Recipient list file" default:"chat_ids.json"`
}

func main() {
	kong.Parse(&CLI, kong.Description("Add a recipient to the notification list"))

	repo := storage.NewJSONRecipientRepository(CLI.File)
	err := repo.Add(recipient.Recipient{
		Kind: recipient.Kind(CLI.Kind),
		ID:   CLI.ID,
	})
	switch {
	case errors.Is(err, storage.ErrRecipientExists):
		fmt.Fprintf(os.Stderr, "Recipient %s is already in the list.\n", CLI.ID)
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Could not add recipient: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Added %s as %s recipient.\n", CLI.ID, CLI.Kind)
}
