package core

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDedupCache(t *testing.T) {
	cache := NewDedupCache()
	cache.Store("h1", "index.html")
	cache.Store("h2", "resources/en/index.html")
	cache.Store("h1", "resources/fr/index.html")

	if got, ok := cache.Lookup("h1"); !ok || got != "index.html" {
		t.Errorf("Lookup(h1) = %q, %v, want index.html, true", got, ok)
	}
	if _, ok := cache.Lookup("h3"); ok {
		t.Error("Lookup(h3) should miss")
	}
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}

	want := []string{"index.html", "resources/en/index.html"}
	if diff := cmp.Diff(want, cache.Artifacts()); diff != "" {
		t.Errorf("Artifacts() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssetTable(t *testing.T) {
	table := NewAssetTable()
	table.Put("main.js", []byte("console.log(1)"))
	table.Put("./resources\\en/index.html", []byte("<html></html>"))
	table.Put("main.js", []byte("console.log(2);"))

	asset, ok := table.Lookup("/main.js?v=3")
	if !ok {
		t.Fatal("Lookup(/main.js?v=3) should find main.js")
	}
	if asset.Source() != "console.log(2);" {
		t.Errorf("Source() = %q, want updated content", asset.Source())
	}
	if asset.Size() != len("console.log(2);") {
		t.Errorf("Size() = %d", asset.Size())
	}
	if asset.Hash() != HashString("console.log(2);") {
		t.Errorf("Hash() = %q", asset.Hash())
	}

	want := []string{"main.js", "resources/en/index.html"}
	if diff := cmp.Diff(want, table.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	sizes := table.BySize()
	if len(sizes) != 2 || sizes[0].Name != "main.js" {
		t.Errorf("BySize() = %v", sizes)
	}
}

func TestAssetTableConcurrentPut(t *testing.T) {
	table := NewAssetTable()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table.Put("chunk.js", []byte{byte(i)})
		}(i)
	}
	wg.Wait()

	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestHashContentStable(t *testing.T) {
	a := HashString("<div>hello</div>")
	b := HashContent([]byte("<div>hello</div>"))
	if a != b {
		t.Errorf("HashString and HashContent disagree: %s != %s", a, b)
	}
	if a == HashString("<div>hello</div> ") {
		t.Error("different content must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
}
