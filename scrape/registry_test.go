package scrape

import (
	"testing"
)

func TestRegistryResolvesBuiltinAdapters(t *testing.T) {
	r := NewRegistry()

	for _, key := range []string{"price", "specifications", "variants", "colours", "mileage", "reviews", "gallery"} {
		fn, ok := r.Resolve(key)
		if !ok || fn == nil {
			t.Errorf("built-in adapter %q not resolvable", key)
		}
		if r.Kind(key) == KindUnknown {
			t.Errorf("built-in adapter %q has unknown kind", key)
		}
	}

	if _, ok := r.Resolve("gizmo"); ok {
		t.Error("unregistered key resolved to an adapter")
	}
	if r.Kind("gizmo") != KindUnknown {
		t.Errorf("unregistered key kind = %v, want KindUnknown", r.Kind("gizmo"))
	}
}

func TestFieldKindString(t *testing.T) {
	tests := []struct {
		kind FieldKind
		want string
	}{
		{KindPrice, "price"},
		{KindSpecifications, "specifications"},
		{KindMileage, "mileage"},
		{KindUnknown, "unknown"},
		{FieldKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("FieldKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestHQFromSrcset(t *testing.T) {
	tests := []struct {
		name    string
		srcset  string
		fallback string
		want    string
	}{
		{
			name:    "picks last candidate",
			srcset:  "https://img/x-320.webp 320w, https://img/x-640.webp 640w, https://img/x-1280.webp 1280w",
			fallback: "https://img/x.webp",
			want:    "https://img/x-1280.webp",
		},
		{
			name:    "empty srcset falls back",
			srcset:  "",
			fallback: "https://img/x.webp",
			want:    "https://img/x.webp",
		},
		{
			name:    "single candidate without descriptor",
			srcset:  "https://img/x-hq.webp",
			fallback: "https://img/x.webp",
			want:    "https://img/x-hq.webp",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hqFromSrcset(tt.srcset, tt.fallback); got != tt.want {
				t.Errorf("hqFromSrcset(%q) = %q, want %q", tt.srcset, got, tt.want)
			}
		})
	}
}
