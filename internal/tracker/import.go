package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/adriaviles2711/finanzaApp/internal/importer"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/ofx"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

// ImportProgress is invoked once per persisted transaction so callers can
// surface progress. May be nil.
type ImportProgress func(done, total int)

// ImportCSV parses a CSV export and stores its rows as local transactions.
// Category names are matched against the user's catalogue; unmatched or
// absent names fall back to the first category of the matching type. CSV
// import never creates categories.
func (m *Manager) ImportCSV(ctx context.Context, r io.Reader, progress ImportProgress) (*service.ImportSummary, error) {
	rows, badRows, err := importer.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return m.importRows(ctx, rows, badRows, progress)
}

// ImportOFX parses an OFX/QFX bank statement and stores its rows as local
// transactions. Statements carry no categories, so every row lands in the
// fallback category of its type.
func (m *Manager) ImportOFX(ctx context.Context, r io.Reader, progress ImportProgress) (*service.ImportSummary, error) {
	rows, err := ofx.NewParser().Parse(r)
	if err != nil {
		return nil, err
	}
	return m.importRows(ctx, rows, 0, progress)
}

// ImportJSON restores a backup file: its categories are recreated when
// missing, then its transactions are inserted with category references
// remapped from the backup's ids to the local ones.
func (m *Manager) ImportJSON(ctx context.Context, r io.Reader, progress ImportProgress) (*service.ImportSummary, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}

	backup, badRows, err := importer.ParseBackup(r)
	if err != nil {
		return nil, err
	}

	summary := &service.ImportSummary{Errors: badRows}

	resolver, err := m.newCategoryResolver(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Backup ids almost never match the receiving account's, so map each
	// backup category to a local one by (name, type), creating it when
	// absent.
	remap := make(map[string]string, len(backup.Categories))
	for _, parsed := range backup.Categories {
		localID, created, err := resolver.resolve(ctx, parsed.Name, parsed.Type, parsed.Icon, parsed.Color)
		if err != nil {
			slog.Warn("skipping backup category", "name", parsed.Name, "error", err)
			summary.Errors++
			continue
		}
		if created {
			summary.Categories++
		}
		remap[parsed.ID] = localID
	}

	total := len(backup.Transactions)
	for i, row := range backup.Transactions {
		categoryID, ok := remap[row.CategoryID]
		if !ok {
			categoryID = resolver.fallback(row.Type)
		}
		_, err := m.CreateTransaction(ctx, NewTransaction{
			CategoryID:     categoryID,
			Type:           row.Type,
			Amount:         row.Amount,
			Date:           row.Date,
			Description:    row.Description,
			AttachmentURL:  row.AttachmentURL,
			AttachmentName: row.AttachmentName,
		})
		if err != nil {
			slog.Warn("skipping backup transaction", "error", err)
			summary.Errors++
			continue
		}
		summary.Transactions++
		if progress != nil {
			progress(i+1, total)
		}
	}

	m.scheduleSync()
	return summary, nil
}

func (m *Manager) importRows(ctx context.Context, rows []importer.ParsedTransaction, badRows int, progress ImportProgress) (*service.ImportSummary, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}

	summary := &service.ImportSummary{Errors: badRows}

	resolver, err := m.newCategoryResolver(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := len(rows)
	for i, row := range rows {
		categoryID, ok := resolver.lookup(row.CategoryName, row.Type)
		if !ok {
			categoryID = resolver.fallback(row.Type)
		}

		_, err := m.CreateTransaction(ctx, NewTransaction{
			CategoryID:  categoryID,
			Type:        row.Type,
			Amount:      row.Amount,
			Date:        row.Date,
			Description: row.Description,
		})
		if err != nil {
			slog.Warn("skipping imported row", "error", err)
			summary.Errors++
			continue
		}
		summary.Transactions++
		if progress != nil {
			progress(i+1, total)
		}
	}

	m.scheduleSync()
	return summary, nil
}

// categoryResolver matches imported category names against the user's
// catalogue without re-querying the store per row.
type categoryResolver struct {
	manager   *Manager
	byKey     map[string]string
	fallbacks map[model.RecordType]string
}

func (m *Manager) newCategoryResolver(ctx context.Context, userID string) (*categoryResolver, error) {
	cats, err := m.store.ListCategories(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	resolver := &categoryResolver{
		manager:   m,
		byKey:     make(map[string]string, len(cats)),
		fallbacks: make(map[model.RecordType]string, 2),
	}
	earliest := make(map[model.RecordType]time.Time, 2)
	for _, cat := range cats {
		if _, ok := resolver.byKey[cat.Key()]; !ok {
			resolver.byKey[cat.Key()] = cat.ID
		}
		// The fallback per type is the oldest category, which for a seeded
		// catalogue is its first entry.
		if at, ok := earliest[cat.Type]; !ok || cat.CreatedAt.Before(at) {
			earliest[cat.Type] = cat.CreatedAt
			resolver.fallbacks[cat.Type] = cat.ID
		}
	}
	return resolver, nil
}

// lookup matches a category name and type against the catalogue. It never
// creates anything; unmatched names report false.
func (r *categoryResolver) lookup(name string, categoryType model.RecordType) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	id, ok := r.byKey[strings.ToLower(strings.TrimSpace(name))+"_"+string(categoryType)]
	return id, ok
}

// resolve returns the local category id for a name and type, creating the
// category when the catalogue has no match. The second return reports
// whether a category was created.
func (r *categoryResolver) resolve(ctx context.Context, name string, categoryType model.RecordType, icon, color string) (string, bool, error) {
	key := strings.ToLower(strings.TrimSpace(name)) + "_" + string(categoryType)
	if id, ok := r.byKey[key]; ok {
		return id, false, nil
	}

	if icon == "" {
		icon = "📁"
	}
	if color == "" {
		color = "#6b7280"
	}
	cat, err := r.manager.CreateCategory(ctx, NewCategory{
		Name:  strings.TrimSpace(name),
		Type:  categoryType,
		Icon:  icon,
		Color: color,
	})
	if err != nil {
		return "", false, err
	}
	r.byKey[key] = cat.ID
	if _, ok := r.fallbacks[categoryType]; !ok {
		r.fallbacks[categoryType] = cat.ID
	}
	return cat.ID, true, nil
}

// fallback returns a best-effort category id for rows whose category
// could not be matched.
func (r *categoryResolver) fallback(categoryType model.RecordType) string {
	return r.fallbacks[categoryType]
}
