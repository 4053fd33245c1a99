//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards_fts`).Scan(&count); err != nil {
		t.Fatalf("cards_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	card := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Ada\r\nNOTE:writes powerful analytical engines\r\nEND:VCARD\r\n"
	mustIndex(t, db, "ada.vcf", card)

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "ada.vcf" {
		t.Errorf("path = %q", results[0].Path)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "gone.vcf", "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Vanishing\r\nEND:VCARD\r\n")
	_ = db.DeleteCard("gone.vcf")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.vcf" {
			t.Error("deleted card still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "evo.vcf", "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Old\r\nNOTE:original\r\nEND:VCARD\r\n")
	mustIndex(t, db, "evo.vcf", "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:New\r\nNOTE:replacement\r\nEND:VCARD\r\n")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Name != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
