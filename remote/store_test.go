package remote

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"reportaqui/queue"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func testReport() *queue.PendingReport {
	lat, lng := -23.5505, -46.6333
	return &queue.PendingReport{
		ID:       "11111111-2222-3333-4444-555555555555",
		Protocol: "ABCD2345",
		ReportInput: queue.ReportInput{
			UF:          "SP",
			City:        "São Paulo",
			Category:    queue.CategorySanitation,
			Title:       "Overflowing dumpster",
			Description: "Garbage has not been collected for a week.",
			OccurredAt:  "2025-11-03",
			AddressText: "Av. Paulista, 900",
			Latitude:    &lat,
			Longitude:   &lng,
			IsAnonymous: true,
		},
		CreatedAt: time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestInsertReport(t *testing.T) {
	it(func() {
		testCases := []struct {
			name          string
			seq           int64
			execError     bool
			errorExpected bool
		}{
			{
				name: "Successful insert",
				seq:  42,
			},
			{
				name:          "Exec error",
				execError:     true,
				errorExpected: true,
			},
		}

		for _, testCase := range testCases {
			r := testReport()
			expect := mock.ExpectExec("INSERT INTO reports").
				WithArgs(r.Protocol, r.UF, r.City, string(r.Category), r.Title,
					r.Description, r.OccurredAt, r.AddressText, *r.Latitude, *r.Longitude,
					r.IsAnonymous, r.AuthorName, r.AuthorContact, r.ShowNamePublicly, r.CreatedAt)
			if testCase.execError {
				expect.WillReturnError(fmt.Errorf("connection lost"))
			} else {
				expect.WillReturnResult(sqlmock.NewResult(testCase.seq, 1))
			}

			seq, err := NewStore(db).InsertReport(context.Background(), r)
			if testCase.errorExpected != (err != nil) {
				t.Errorf("%s: expected error: %v, got error: %v", testCase.name, testCase.errorExpected, err)
			}
			if !testCase.errorExpected && seq != testCase.seq {
				t.Errorf("%s: expected seq %d, got %d", testCase.name, testCase.seq, seq)
			}
		}
	})
}

func TestInsertEvidence(t *testing.T) {
	it(func() {
		testCases := []struct {
			name          string
			rowsAffected  int64
			execError     bool
			errorExpected bool
		}{
			{
				name:         "Successful insert",
				rowsAffected: 1,
			},
			{
				name:          "No row affected",
				rowsAffected:  0,
				errorExpected: true,
			},
			{
				name:          "Exec error",
				execError:     true,
				errorExpected: true,
			},
		}

		for _, testCase := range testCases {
			expect := mock.ExpectExec("INSERT INTO report_evidence").
				WithArgs(int64(7), "https://blobs.example.org/reports/7/x.jpg", "image/jpeg", "photo.jpg")
			if testCase.execError {
				expect.WillReturnError(fmt.Errorf("connection lost"))
			} else {
				expect.WillReturnResult(sqlmock.NewResult(1, testCase.rowsAffected))
			}

			err := NewStore(db).InsertEvidence(context.Background(), 7,
				"https://blobs.example.org/reports/7/x.jpg", "image/jpeg", "photo.jpg")
			if testCase.errorExpected != (err != nil) {
				t.Errorf("%s: expected error: %v, got error: %v", testCase.name, testCase.errorExpected, err)
			}
		}
	})
}

func TestBlobPublicURL(t *testing.T) {
	it(func() {
		blobs := NewBlobStore(db, "https://blobs.example.org/evidence/")
		got := blobs.PublicURL("/reports/7/a.jpg")
		expected := "https://blobs.example.org/evidence/reports/7/a.jpg"
		if got != expected {
			t.Errorf("PublicURL: got %q, expected %q", got, expected)
		}
	})
}
