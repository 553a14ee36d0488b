package catalog

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/spreadsheet"
	"github.com/wys-platform/prices/internal/pkg/store"
)

type SheetReport struct {
	Country       string `json:"country"`
	Rows          int    `json:"rows"`
	PriceValues   int    `json:"price_values"`
	Subcategories int    `json:"subcategories"`
}

type UploadReport struct {
	Sheets []SheetReport `json:"sheets"`
}

// Upload ingests a catalog workbook, one sheet per country. Each sheet is
// written in its own transaction: a failing sheet leaves nothing behind,
// sheets before it stay committed.
func (s *Service) Upload(ctx context.Context, filename string, body []byte) (*UploadReport, error) {
	s.uploadMx.Lock()
	defer s.uploadMx.Unlock()

	wb, err := spreadsheet.Read(filename, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.archiveUpload(ctx, "catalog", filename, body)

	report := &UploadReport{}
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		sheetCtx := logger.With(ctx, "sheet", sheet.Name)

		var rep *SheetReport
		err = s.store.InTx(sheetCtx, func(tx store.Store) error {
			rep, err = s.ingestSheet(sheetCtx, tx, sheet)
			return err
		})
		if err != nil {
			logger.Errorf(sheetCtx, "ingest sheet: %s", err.Error())
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}

		logger.Infof(sheetCtx, "sheet ingested: %d rows, %d price values, %d subcategories",
			rep.Rows, rep.PriceValues, rep.Subcategories)
		report.Sheets = append(report.Sheets, *rep)
	}

	return report, nil
}

type cellIDs struct {
	categoryID int64
	moduleID   *int64
}

func (s *Service) ingestSheet(ctx context.Context, tx store.Store, sheet *spreadsheet.Sheet) (*SheetReport, error) {
	name := countryName(sheet.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: sheet has no name", constants.ErrInvalidInput)
	}

	country, err := tx.UpsertCountry(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("UpsertCountry: %w", err)
	}
	if name == s.defaultCountry {
		if _, err = tx.SetDefaultCountry(ctx, name); err != nil {
			return nil, fmt.Errorf("SetDefaultCountry: %w", err)
		}
	}

	df, err := sheet.Frame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidInput, err)
	}

	report := &SheetReport{Country: name}
	resolved := make(map[cellKey]cellIDs)

	flush := func(agg *aggregate) error {
		ids, ok := resolved[agg.key]
		if !ok {
			return fmt.Errorf("no category resolved for %+v", agg.key)
		}
		_, err := tx.UpsertPriceValue(ctx, &domain.PriceValue{
			CountryID:  country.ID,
			CategoryID: ids.categoryID,
			ModuleID:   ids.moduleID,
			Low:        agg.low.InexactFloat64(),
			Medium:     agg.medium.InexactFloat64(),
			High:       agg.high.InexactFloat64(),
		})
		if err != nil {
			return fmt.Errorf("UpsertPriceValue %s/%s: %w", agg.key.Module, agg.key.Category, err)
		}
		report.PriceValues++
		return nil
	}

	var acc accumulator
	for i := 0; i < df.Nrow(); i++ {
		if spreadsheet.Blank(df, i) {
			continue
		}

		row, err := Classify(sheet.Name, df, i)
		if err != nil {
			return nil, err
		}
		report.Rows++

		var flushed *aggregate
		flushed, acc = step(acc, row)
		if flushed != nil {
			if err = flush(flushed); err != nil {
				return nil, err
			}
		}

		ids, err := s.ingestRow(ctx, tx, country, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Number, err)
		}
		resolved[row.key()] = ids
		if row.HasSubcategory() {
			report.Subcategories++
		}
	}

	if last := acc.final(); last != nil {
		if err = flush(last); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// ingestRow upserts the entities a row names and the subcategory's own price value.
func (s *Service) ingestRow(ctx context.Context, tx store.Store, country *domain.Country, row *Row) (cellIDs, error) {
	code := row.Category
	var ids cellIDs

	if row.Kind == RowBase {
		code = constants.BaseCode
	} else {
		module, err := tx.UpsertModule(ctx, row.Module)
		if err != nil {
			return ids, fmt.Errorf("UpsertModule: %w", err)
		}
		ids.moduleID = &module.ID
	}

	category, err := tx.UpsertCategory(ctx, store.UpsertCategoryOpts{
		Name: row.Category,
		Code: code,
		Kind: row.CategoryKind,
	})
	if err != nil {
		return ids, fmt.Errorf("UpsertCategory: %w", err)
	}
	ids.categoryID = category.ID

	if !row.HasSubcategory() {
		return ids, nil
	}

	sub, err := tx.UpsertCategory(ctx, store.UpsertCategoryOpts{
		Name:     row.Subcategory,
		Code:     code,
		Kind:     row.SubcategoryKind,
		ParentID: &category.ID,
	})
	if err != nil {
		return ids, fmt.Errorf("UpsertCategory (subcategory): %w", err)
	}

	_, err = tx.UpsertPriceValue(ctx, &domain.PriceValue{
		CountryID:  country.ID,
		CategoryID: sub.ID,
		ModuleID:   ids.moduleID,
		Low:        row.Low.InexactFloat64(),
		Medium:     row.Medium.InexactFloat64(),
		High:       row.High.InexactFloat64(),
	})
	if err != nil {
		return ids, fmt.Errorf("UpsertPriceValue (subcategory): %w", err)
	}

	return ids, nil
}

func (s *Service) archiveUpload(ctx context.Context, prefix, filename string, body []byte) {
	if s.archive == nil {
		return
	}

	key := fmt.Sprintf("%s/%s-%s", prefix, s.now().UTC().Format("20060102T150405Z"), filepath.Base(filename))
	if err := s.archive.Put(ctx, key, body); err != nil {
		logger.Warnf(ctx, "archive upload %s: %s", key, err.Error())
	}
}
