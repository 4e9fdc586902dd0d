package pipeline

import "testing"

func TestTag_Empty(t *testing.T) {
	docs := Tag(nil, map[string]string{"url": "https://x"})
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestTag_AttachesMetadata(t *testing.T) {
	docs := Tag([]string{"a", "b"}, map[string]string{"url": "https://x"})
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	for i, d := range docs {
		if d.Metadata["url"] != "https://x" {
			t.Errorf("doc %d: expected url metadata, got %v", i, d.Metadata)
		}
		if d.ID == "" {
			t.Errorf("doc %d: missing ID", i)
		}
	}
	if docs[0].Content != "a" || docs[1].Content != "b" {
		t.Errorf("chunk order not preserved: %q, %q", docs[0].Content, docs[1].Content)
	}
	if docs[0].ID == docs[1].ID {
		t.Error("documents share an ID")
	}
}

func TestTag_MetadataNotShared(t *testing.T) {
	docs := Tag([]string{"a", "b"}, map[string]string{"url": "https://x"})
	docs[0].Metadata["url"] = "https://y"
	if docs[1].Metadata["url"] != "https://x" {
		t.Error("metadata map is shared between documents")
	}
}
