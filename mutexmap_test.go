package nex

import "testing"

func TestMutexMapGetSetDelete(t *testing.T) {
	m := NewMutexMap[string, int]()

	if _, ok := m.Get("a"); ok {
		t.Fatal("Get on an empty map must report not-found")
	}

	m.Set("a", 1)

	v, ok := m.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}

	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}

	m.Delete("a")

	if _, ok := m.Get("a"); ok {
		t.Fatal("Get after Delete must report not-found")
	}

	if m.Size() != 0 {
		t.Fatalf("Size() after Delete = %d, want 0", m.Size())
	}
}

func TestMutexMapEachVisitsEveryEntry(t *testing.T) {
	m := NewMutexMap[int, string]()
	m.Set(1, "one")
	m.Set(2, "two")
	m.Set(3, "three")

	seen := map[int]string{}
	m.Each(func(key int, value string) bool {
		seen[key] = value
		return true
	})

	if len(seen) != 3 {
		t.Fatalf("len(seen) = %d, want 3", len(seen))
	}
}

func TestMutexMapEachStopsOnFalse(t *testing.T) {
	m := NewMutexMap[int, string]()
	m.Set(1, "one")
	m.Set(2, "two")
	m.Set(3, "three")

	visited := 0
	m.Each(func(key int, value string) bool {
		visited++
		return false
	})

	if visited != 1 {
		t.Fatalf("visited = %d, want 1 (Each must stop after f returns false)", visited)
	}
}

func TestMutexMapRunAndReturnAllocatesAtomically(t *testing.T) {
	m := NewMutexMap[int, string]()
	m.Set(1, "a")

	result := m.RunAndReturn(func(real map[int]string) string {
		real[2] = "b"
		return real[1]
	})

	if result != "a" {
		t.Fatalf("RunAndReturn result = %q, want \"a\"", result)
	}

	if v, ok := m.Get(2); !ok || v != "b" {
		t.Fatalf("Get(2) = (%q, %v), want (\"b\", true) after RunAndReturn mutated the map", v, ok)
	}
}
