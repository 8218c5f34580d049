// Package render turns stored complaints into text lines (and an optional
// PNG card) for delivery through the messaging channel.
//
// Two text layouts exist:
//   - Latest: the short summary the bot sends on request. ServiceNumber is
//     deliberately left out of it.
//   - Detail: every field, with a placeholder for a missing ServiceNumber.
package render

import (
	"context"
	"fmt"
	"log"

	"reclamos/internal/complaint"
)

// Fixed texts shown to users.
const (
	EmptyMessage      = "No complaints registered yet."
	LatestHeader      = "Last complaint received:"
	DetailHeader      = "Complaint received:"
	NotAvailable      = "not available"
	LookupAcknowledge = "One moment, looking up your complaint..."
)

// LastLoader is the part of the record store the renderer needs.
type LastLoader interface {
	LoadLast(ctx context.Context) (*complaint.Record, error)
}

// Renderer formats the most recent complaint held by a store.
type Renderer struct {
	store LastLoader
}

// NewRenderer creates a renderer reading from store.
func NewRenderer(store LastLoader) *Renderer {
	return &Renderer{store: store}
}

// RenderLatest returns the display lines for the most recent complaint.
//
// An empty store, or one that cannot be read, yields the single empty-state
// line. Read failures are logged, never returned.
func (r *Renderer) RenderLatest(ctx context.Context) []string {
	record, err := r.store.LoadLast(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load latest complaint: %v", err)
		return []string{EmptyMessage}
	}
	if record == nil {
		return []string{EmptyMessage}
	}
	return Latest(*record)
}

// RenderLatestDetail is RenderLatest using the full-detail layout.
func (r *Renderer) RenderLatestDetail(ctx context.Context) []string {
	record, err := r.store.LoadLast(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load latest complaint: %v", err)
		return []string{EmptyMessage}
	}
	if record == nil {
		return []string{EmptyMessage}
	}
	return Detail(*record)
}

// Latest renders the short summary of a record.
func Latest(r complaint.Record) []string {
	return []string{
		LatestHeader,
		line(complaint.FieldAccountNumber, r.AccountNumber),
		line(complaint.FieldPhone, r.Phone),
		line(complaint.FieldCategory, r.Category),
		line(complaint.FieldType, string(r.Type)),
		line(complaint.FieldReference, r.Reference),
		line(complaint.FieldDescription, r.Description),
	}
}

// Detail renders every field of a record.
func Detail(r complaint.Record) []string {
	return []string{
		DetailHeader,
		line(complaint.FieldAccountNumber, r.AccountNumber),
		line(complaint.FieldServiceNumber, ServiceNumber(r)),
		line(complaint.FieldPhone, r.Phone),
		line(complaint.FieldCategory, r.Category),
		line(complaint.FieldType, string(r.Type)),
		line(complaint.FieldReference, r.Reference),
		line(complaint.FieldDescription, r.Description),
	}
}

// ServiceNumber returns the record's service number, or NotAvailable when it
// is absent or blank.
func ServiceNumber(r complaint.Record) string {
	if r.ServiceNumber == nil || *r.ServiceNumber == "" {
		return NotAvailable
	}
	return *r.ServiceNumber
}

func line(field, value string) string {
	return fmt.Sprintf("- %s: %s", field, value)
}
