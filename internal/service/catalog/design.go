package catalog

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/wys-platform/prices/internal/domain"
	"github.com/wys-platform/prices/internal/pkg/constants"
	"github.com/wys-platform/prices/internal/pkg/logger"
	"github.com/wys-platform/prices/internal/pkg/spreadsheet"
	"github.com/wys-platform/prices/internal/pkg/store"
)

// UploadDesign ingests a design-prices workbook: one sheet per country, rows
// of (code, amount) in columns B and C. Unknown codes are ignored.
func (s *Service) UploadDesign(ctx context.Context, filename string, body []byte) ([]*domain.PriceDesign, error) {
	s.uploadMx.Lock()
	defer s.uploadMx.Unlock()

	wb, err := spreadsheet.Read(filename, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	s.archiveUpload(ctx, "design", filename, body)

	designs := make([]*domain.PriceDesign, 0, len(wb.Sheets))
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		sheetCtx := logger.With(ctx, "sheet", sheet.Name)

		var design *domain.PriceDesign
		err = s.store.InTx(sheetCtx, func(tx store.Store) error {
			design, err = s.ingestDesignSheet(sheetCtx, tx, sheet)
			return err
		})
		if err != nil {
			logger.Errorf(sheetCtx, "ingest design sheet: %s", err.Error())
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
		designs = append(designs, design)
	}

	return designs, nil
}

func (s *Service) ingestDesignSheet(ctx context.Context, tx store.Store, sheet *spreadsheet.Sheet) (*domain.PriceDesign, error) {
	name := countryName(sheet.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: sheet has no name", constants.ErrInvalidInput)
	}

	country, err := tx.UpsertCountry(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("UpsertCountry: %w", err)
	}

	df, err := sheet.Frame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidInput, err)
	}

	design := &domain.PriceDesign{CountryID: country.ID}
	for i := 0; i < df.Nrow(); i++ {
		code, ok := spreadsheet.Text(df, i, constants.DesignColumnCode)
		if !ok {
			continue
		}
		bracket := slices.Index(constants.DesignCategoryCodes[:], code) + 1
		if bracket == 0 {
			logger.Debugf(ctx, "design code %q ignored", code)
			continue
		}

		value, err := amount(sheet.Name, df, i, constants.DesignColumnAmount, "C")
		if err != nil {
			return nil, err
		}
		if err = design.Set(bracket, value.InexactFloat64()); err != nil {
			return nil, err
		}
	}

	saved, err := tx.UpsertPriceDesign(ctx, design)
	if err != nil {
		return nil, fmt.Errorf("UpsertPriceDesign: %w", err)
	}

	return saved, nil
}
