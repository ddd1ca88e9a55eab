package dat

import (
	"bytes"
	"testing"
)

func TestBuildExactMatch(t *testing.T) {
	keys := []string{"a", "ab", "abc"}
	trie, err := Build(keys)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, k := range keys {
		v, ok := trie.ExactMatch(k)
		if !ok || v != i {
			t.Errorf("ExactMatch(%q) = %v, %v; want %d, true", k, v, ok, i)
		}
	}
	if _, ok := trie.ExactMatch("b"); ok {
		t.Errorf("ExactMatch(%q) should miss", "b")
	}
	if _, ok := trie.ExactMatch("abcd"); ok {
		t.Errorf("ExactMatch(%q) should miss", "abcd")
	}
}

func TestCommonPrefixIterASCII(t *testing.T) {
	trie, err := Build([]string{"a", "ab", "abc"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	it := trie.CommonPrefixIter("abcd")
	type pair struct{ end, value int }
	var got []pair
	for {
		end, v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, pair{end, v})
	}
	want := []pair{{1, 0}, {2, 1}, {3, 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCommonPrefixIterCJK(t *testing.T) {
	keys := []string{"中", "中華", "中華人民", "中華人民共和国"}
	trie, err := Build(keys)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	it := trie.CommonPrefixIter("中華人民共和国")
	wantEnds := []int{3, 6, 12, 21}
	i := 0
	for {
		end, v, ok := it.Next()
		if !ok {
			break
		}
		if i >= len(wantEnds) {
			t.Fatalf("unexpected extra match (%d,%d)", end, v)
		}
		if end != wantEnds[i] || v != i {
			t.Errorf("match %d: got (%d,%d), want (%d,%d)", i, end, v, wantEnds[i], i)
		}
		i++
	}
	if i != len(wantEnds) {
		t.Fatalf("got %d matches, want %d", i, len(wantEnds))
	}
}

func TestInsertDelete(t *testing.T) {
	trie, err := Build([]string{"a"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	toInsert := map[string]int{"bachelor": 10, "jar": 11, "badge": 12, "baby": 13}
	for k, v := range toInsert {
		if err := trie.Insert(k, v); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}
	if v, ok := trie.ExactMatch("a"); !ok || v != 0 {
		t.Errorf("ExactMatch(a) = %v,%v; existing key must survive insert-relocation", v, ok)
	}
	for k, v := range toInsert {
		got, ok := trie.ExactMatch(k)
		if !ok || got != v {
			t.Errorf("ExactMatch(%q) = %v,%v; want %d,true", k, got, ok, v)
		}
	}

	if err := trie.Delete("jar"); err != nil {
		t.Fatalf("Delete(jar): %v", err)
	}
	if _, ok := trie.ExactMatch("jar"); ok {
		t.Errorf("ExactMatch(jar) should miss after delete")
	}
	for _, k := range []string{"a", "bachelor", "badge", "baby"} {
		if _, ok := trie.ExactMatch(k); !ok {
			t.Errorf("ExactMatch(%q) should survive unrelated delete", k)
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	trie, err := Build([]string{"a", "ab", "abc", "中華"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var buf bytes.Buffer
	if err := trie.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, k := range []string{"a", "ab", "abc", "中華"} {
		v, ok := loaded.ExactMatch(k)
		if !ok || v != i {
			t.Errorf("after roundtrip, ExactMatch(%q) = %v,%v; want %d,true", k, v, ok, i)
		}
	}
}
