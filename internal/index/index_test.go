package index

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/cardex/internal/apperr"
	"github.com/starford/cardex/internal/models"
)

const (
	janeCard = "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Jane Doe\r\nBDAY:19900101\r\n" +
		"work.TEL;TYPE=cell:555-0100\r\nEMAIL:jane@example.com\r\nEND:VCARD\r\n"
	bobCard     = "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:bob\r\nNOTE:uniqueword here\r\nEND:VCARD\r\n"
	invalidCard = "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Eve\r\nX-FOO:bar\r\nEND:VCARD\r\n"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "cardex-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustIndex(t *testing.T, db *DB, path, data string) models.CardRecord {
	t.Helper()
	rec, err := db.IndexFile(path, []byte(data))
	if err != nil {
		t.Fatalf("IndexFile(%s): %v", path, err)
	}
	return rec
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM cards`).Scan(&count); err != nil {
		t.Fatalf("cards table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM properties`).Scan(&count); err != nil {
		t.Fatalf("properties table missing: %v", err)
	}
}

func TestBuildRecord_Valid(t *testing.T) {
	rec, props := BuildRecord("jane.vcf", []byte(janeCard))
	if !rec.Valid || rec.ErrorCode != "" {
		t.Fatalf("rec = %+v, want valid", rec)
	}
	if rec.Name != "Jane Doe" || rec.OpLength != 3 {
		t.Errorf("name=%q opLength=%d", rec.Name, rec.OpLength)
	}
	if len(props) != 3 {
		t.Fatalf("props = %+v", props)
	}
	if props[0].Name != "FN" || props[0].Position != 1 {
		t.Errorf("first prop = %+v", props[0])
	}
	if props[1].Group != "work" || props[1].Name != "TEL" || props[1].Values != "555-0100" {
		t.Errorf("tel prop = %+v", props[1])
	}
}

func TestBuildRecord_InvalidKeepsCode(t *testing.T) {
	rec, props := BuildRecord("eve.vcf", []byte(invalidCard))
	if rec.Valid {
		t.Fatal("expected invalid record")
	}
	if rec.ErrorCode != "INV_PROP" {
		t.Errorf("code = %q, want INV_PROP", rec.ErrorCode)
	}
	if rec.Name != "Eve" {
		t.Errorf("name = %q", rec.Name)
	}
	if len(props) != 0 {
		t.Errorf("invalid card should have no properties, got %d", len(props))
	}

	rec, _ = BuildRecord("junk.vcf", []byte("hello"))
	if rec.Valid || rec.ErrorCode != "INV_PROP" {
		t.Errorf("junk rec = %+v", rec)
	}
}

func TestIndexAndGetCard(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "jane.vcf", janeCard)

	got, err := db.GetCard("jane.vcf")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if got.Name != "Jane Doe" || !got.Valid || got.Body != janeCard {
		t.Errorf("got %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("updated_at not stored")
	}

	props, err := db.Properties("jane.vcf")
	if err != nil {
		t.Fatalf("Properties: %v", err)
	}
	if len(props) != 3 || props[2].Name != "EMAIL" {
		t.Errorf("props = %+v", props)
	}
}

func TestGetCard_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetCard("nobody.vcf")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertReplacesProperties(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "c.vcf", janeCard)
	mustIndex(t, db, "c.vcf", bobCard)

	got, _ := db.GetCard("c.vcf")
	if got.Name != "bob" {
		t.Errorf("name = %q", got.Name)
	}
	props, _ := db.Properties("c.vcf")
	if len(props) != 2 || props[1].Name != "NOTE" {
		t.Errorf("props = %+v", props)
	}
}

func TestDeleteCard(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "del.vcf", janeCard)

	if err := db.DeleteCard("del.vcf"); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	cs, _ := db.GetChecksum("del.vcf")
	if cs != "" {
		t.Errorf("deleted card still has checksum %q", cs)
	}
	props, _ := db.Properties("del.vcf")
	if len(props) != 0 {
		t.Errorf("properties left after delete: %d", len(props))
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.vcf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListCards(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "a/jane.vcf", janeCard)
	mustIndex(t, db, "b/bob.vcf", bobCard)
	mustIndex(t, db, "c/eve.vcf", invalidCard)

	all, total, err := db.ListCards(ListQuery{})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("total=%d len=%d", total, len(all))
	}
	// case-folded name order: bob, Eve, Jane Doe
	if all[0].Name != "bob" || all[1].Name != "Eve" || all[2].Name != "Jane Doe" {
		t.Errorf("order = %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}

	valid := true
	page, total, err := db.ListCards(ListQuery{Valid: &valid, Limit: 1, Offset: 1, Sort: "path"})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].Path != "b/bob.vcf" {
		t.Errorf("total=%d page=%+v", total, page)
	}

	if _, _, err := db.ListCards(ListQuery{Sort: "checksum"}); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	a := mustIndex(t, db, "a.vcf", janeCard)
	mustIndex(t, db, "b.vcf", bobCard)

	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(sums) != 2 || sums["a.vcf"] != a.Checksum {
		t.Errorf("sums = %v", sums)
	}
	paths, _ := db.AllPaths()
	if _, ok := paths["b.vcf"]; !ok || len(paths) != 2 {
		t.Errorf("paths = %v", paths)
	}
}

func TestUpsertCard_Direct(t *testing.T) {
	db := testDB(t)
	rec := models.CardRecord{Path: "x.vcf", Name: "X", Checksum: "abc123", Valid: true, UpdatedAt: time.Now()}
	if err := db.UpsertCard(rec, nil); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}
	cs, _ := db.GetChecksum("x.vcf")
	if cs != "abc123" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	mustIndex(t, db, "bob.vcf", bobCard)
	mustIndex(t, db, "jane.vcf", janeCard)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "bob.vcf" {
		t.Errorf("search results = %+v, want 1 hit for bob.vcf", results)
	}

	results, err = db.Search("Jane", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Jane Doe" {
		t.Errorf("name search = %+v", results)
	}
}
