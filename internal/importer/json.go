package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// Backup files keep the field names the original web app exported.
type backupFile struct {
	Categorias    []backupCategory    `json:"categorias"`
	Transacciones []backupTransaction `json:"transacciones"`
}

type backupCategory struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
	Icono  string `json:"icono"`
	Color  string `json:"color"`
}

type backupTransaction struct {
	ID          string      `json:"id"`
	CategoryID  string      `json:"category_id"`
	Tipo        string      `json:"tipo"`
	Monto       json.Number `json:"monto"`
	Fecha       string      `json:"fecha"`
	Descripcion string      `json:"descripcion"`
	ArchivoURL  string      `json:"archivo_url"`
	ArchivoNom  string      `json:"archivo_nombre"`

	// Older exports wrote the category reference under a translated key.
	CategoriaID string `json:"categoria_id"`
}

// ParseBackup decodes a JSON backup file. Entries that fail to parse are
// counted and skipped so a single bad row never loses the whole backup.
func ParseBackup(r io.Reader) (*Backup, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read backup: %w", err)
	}

	var file backupFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, 0, fmt.Errorf("failed to decode backup: %w", err)
	}

	backup := &Backup{}
	badRows := 0

	for _, cat := range file.Categorias {
		catType, ok := ParseRecordType(cat.Tipo)
		if !ok || cat.Nombre == "" {
			slog.Warn("skipping backup category", "id", cat.ID, "name", cat.Nombre, "type", cat.Tipo)
			badRows++
			continue
		}
		backup.Categories = append(backup.Categories, ParsedCategory{
			ID:    cat.ID,
			Name:  cat.Nombre,
			Type:  catType,
			Icon:  cat.Icono,
			Color: cat.Color,
		})
	}

	for _, txn := range file.Transacciones {
		txnType, ok := ParseRecordType(txn.Tipo)
		if !ok {
			slog.Warn("skipping backup transaction with bad type", "id", txn.ID, "type", txn.Tipo)
			badRows++
			continue
		}
		date, err := model.ParseDate(txn.Fecha)
		if err != nil {
			slog.Warn("skipping backup transaction with bad date", "id", txn.ID, "error", err)
			badRows++
			continue
		}
		amount, err := decimal.NewFromString(txn.Monto.String())
		if err != nil {
			slog.Warn("skipping backup transaction with bad amount", "id", txn.ID, "error", err)
			badRows++
			continue
		}
		categoryID := txn.CategoryID
		if categoryID == "" {
			categoryID = txn.CategoriaID
		}
		backup.Transactions = append(backup.Transactions, BackupTransaction{
			Date:           date,
			Amount:         amount.Abs(),
			Type:           txnType,
			CategoryID:     categoryID,
			Description:    txn.Descripcion,
			AttachmentURL:  txn.ArchivoURL,
			AttachmentName: txn.ArchivoNom,
		})
	}

	return backup, badRows, nil
}
