package model

import "testing"

func TestCollection_AddFindRemove(t *testing.T) {
	c := NewCollection("data.example.org")
	if len(c.Queries) != 0 {
		t.Fatalf("Expected empty collection, got %d queries", len(c.Queries))
	}

	c.AddQuery(&SavedQuery{Name: "first", DatasetID: "aaaa-1111", Query: "SELECT *"})
	c.AddQuery(&SavedQuery{Name: "second", DatasetID: "bbbb-2222", Query: "SELECT count(*)"})

	q, ok := c.FindQuery("second")
	if !ok {
		t.Fatal("Expected to find query 'second'")
	}
	if q.DatasetID != "bbbb-2222" {
		t.Errorf("DatasetID = %s, expected bbbb-2222", q.DatasetID)
	}

	if !c.RemoveQuery("first") {
		t.Error("Expected RemoveQuery to succeed")
	}
	if c.RemoveQuery("missing") {
		t.Error("Expected RemoveQuery of unknown name to fail")
	}

	names := c.Names()
	if len(names) != 1 || names[0] != "second" {
		t.Errorf("Names() = %v, expected [second]", names)
	}
}

func TestCollection_UpdateQuery(t *testing.T) {
	c := NewCollection("data.example.org")
	c.AddQuery(&SavedQuery{Name: "q", DatasetID: "old", Query: "SELECT a"})

	before := c.UpdatedAt
	if !c.UpdateQuery("q", "new", "SELECT b") {
		t.Fatal("Expected update to succeed")
	}

	q, _ := c.FindQuery("q")
	if q.DatasetID != "new" || q.Query != "SELECT b" {
		t.Errorf("Unexpected query after update: %+v", q)
	}
	if c.UpdatedAt.Before(before) {
		t.Error("UpdatedAt should not move backwards")
	}

	if c.UpdateQuery("missing", "x", "y") {
		t.Error("Expected update of unknown query to fail")
	}
}
