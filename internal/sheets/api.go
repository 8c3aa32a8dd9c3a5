package sheets

import (
	"context"

	gsheets "google.golang.org/api/sheets/v4"
)

// sheetsAPI is the subset of the Sheets API the store needs.
type sheetsAPI interface {
	sheetTitles(ctx context.Context) ([]string, error)
	addSheet(ctx context.Context, title string, rows, cols int64) error
	appendRow(ctx context.Context, a1Range string, row []any) error
	getValues(ctx context.Context, a1Range string) ([][]any, error)
}

type serviceAPI struct {
	svc           *gsheets.Service
	spreadsheetID string
}

func (a *serviceAPI) sheetTitles(ctx context.Context) ([]string, error) {
	ss, err := a.svc.Spreadsheets.Get(a.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (a *serviceAPI) addSheet(ctx context.Context, title string, rows, cols int64) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{
					Title: title,
					GridProperties: &gsheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) appendRow(ctx context.Context, a1Range string, row []any) error {
	vr := &gsheets.ValueRange{Values: [][]any{row}}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, a1Range, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (a *serviceAPI) getValues(ctx context.Context, a1Range string) ([][]any, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
