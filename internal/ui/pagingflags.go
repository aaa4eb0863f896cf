package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// AddPagingFlags adds the standard pagination flags to a command.
func AddPagingFlags(cmd *cobra.Command) {
	cmd.Flags().Int("top", 0, "Maximum number of items per page")
	cmd.Flags().Bool("all", false, "Fetch all items across all pages")
	cmd.Flags().String("next", "", "Continue from this next link URL")
	cmd.Flags().Bool("resume", false, "Continue from where the previous run of this listing stopped")
	cmd.MarkFlagsMutuallyExclusive("next", "resume")
}

// ParsePagingFlags extracts pagination settings from command flags. resume
// reports whether the caller should look up a saved continuation.
func ParsePagingFlags(cmd *cobra.Command) (paging onedrive.Paging, resume bool, err error) {
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return onedrive.Paging{}, false, fmt.Errorf("error parsing top flag: %w", err)
	}
	if top < 0 {
		return onedrive.Paging{}, false, fmt.Errorf("--top must not be negative, got %d", top)
	}

	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return onedrive.Paging{}, false, fmt.Errorf("error parsing all flag: %w", err)
	}

	next, err := cmd.Flags().GetString("next")
	if err != nil {
		return onedrive.Paging{}, false, fmt.Errorf("error parsing next flag: %w", err)
	}

	resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return onedrive.Paging{}, false, fmt.Errorf("error parsing resume flag: %w", err)
	}

	return onedrive.Paging{
		Top:      top,
		FetchAll: all,
		NextLink: next,
	}, resume, nil
}

// HandleNextPageInfo displays next page information if available.
func HandleNextPageInfo(nextLink string, fetchAll bool) {
	if nextLink != "" && !fetchAll {
		fmt.Printf("\nNext page available. Use --resume or --next '%s' to continue.\n", nextLink)
	}
}

// ContinuationStore resolves --resume and remembers where a listing stopped.
type ContinuationStore interface {
	ResolvePaging(listing string, paging onedrive.Paging, resume bool) (onedrive.Paging, error)
	RecordContinuation(listing, nextLink string)
}

// RunPagedListing parses the paging flags of cmd, fetches one listing and
// displays it. The next link is recorded under listing for --resume.
func RunPagedListing[T any](cmd *cobra.Command, store ContinuationStore, listing string,
	fetch func(context.Context, onedrive.Paging) ([]T, string, error), display func([]T)) error {
	paging, resume, err := ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	paging, err = store.ResolvePaging(listing, paging, resume)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	items, nextLink, err := fetch(ctx, paging)
	if err != nil {
		return err
	}

	display(items)
	store.RecordContinuation(listing, nextLink)
	HandleNextPageInfo(nextLink, paging.FetchAll)
	return nil
}
