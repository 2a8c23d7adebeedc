package emit

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hero_walk", "hero_walk"},
		{"spaces", "attachment hand", "attachment_hand"},
		{"punctuation", "bip01.L-Hand", "bip01_L_Hand"},
		{"leading digit", "3dsmax", "_3dsmax"},
		{"empty", "", "_"},
		{"unicode", "héro", "h_ro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNameContext_Unique(t *testing.T) {
	c := NewNameContext()

	if got := c.Unique("hero_walk"); got != "hero_walk" {
		t.Errorf("first Unique() = %q", got)
	}
	if got := c.Unique("hero_walk"); got != "hero_walk_1" {
		t.Errorf("second Unique() = %q", got)
	}
	if got := c.Unique("hero_walk"); got != "hero_walk_2" {
		t.Errorf("third Unique() = %q", got)
	}
	if got := c.Unique("hero_run"); got != "hero_run" {
		t.Errorf("unrelated Unique() = %q", got)
	}
}

func TestNameContext_UniqueCollidesAfterSanitize(t *testing.T) {
	c := NewNameContext()

	if got := c.Unique("hero walk"); got != "hero_walk" {
		t.Errorf("first Unique() = %q", got)
	}
	if got := c.Unique("hero.walk"); got != "hero_walk_1" {
		t.Errorf("second Unique() = %q", got)
	}
}

func TestNameContext_MacroName(t *testing.T) {
	c := NewNameContext()

	if got := c.MacroName("hero_anim_walk_INDEX"); got != "HERO_ANIM_WALK_INDEX" {
		t.Errorf("MacroName() = %q", got)
	}
	if got := c.MacroName("attachment hand"); got != "ATTACHMENT_HAND" {
		t.Errorf("MacroName() = %q", got)
	}
}

func TestStruct_Render(t *testing.T) {
	s := NewStruct().
		AddInt(-3).
		AddUint(7).
		AddSymbol("&hero_clip").
		Add(NewStruct().AddInt(1).AddInt(2))

	var b strings.Builder
	s.render(&b)

	want := "{-3, 7, &hero_clip, {1, 2}}"
	if b.String() != want {
		t.Errorf("render = %q, want %q", b.String(), want)
	}
	if s.Len() != 4 {
		t.Errorf("Len() = %d, want 4", s.Len())
	}
}

func TestFile_AddIncludeDeduplicates(t *testing.T) {
	f := NewFile()
	f.AddInclude("\"bp/animation_clip.h\"")
	f.AddInclude("\"bp/animation_clip.h\"")

	var buf bytes.Buffer
	if err := f.WriteSource(&buf); err != nil {
		t.Fatalf("WriteSource() error = %v", err)
	}
	if got := strings.Count(buf.String(), "#include"); got != 1 {
		t.Errorf("include count = %d, want 1", got)
	}
}

func TestFile_WriteSource(t *testing.T) {
	f := NewFile()
	f.AddInclude("\"bp/animation_clip.h\"")
	f.AddDefinition(&Definition{
		Type:    "unsigned short",
		Name:    "hero_bone_parent",
		IsArray: true,
		Data:    NewStruct().AddUint(65535).AddUint(0),
	})
	f.AddDefinition(&Definition{
		Type: "struct BPAnimationClip",
		Name: "hero_walk_clip",
		Data: NewStruct().AddInt(12).AddInt(2).AddSymbol("hero_walk_data").AddUint(30),
	})

	var buf bytes.Buffer
	if err := f.WriteSource(&buf); err != nil {
		t.Fatalf("WriteSource() error = %v", err)
	}

	want := "#include \"bp/animation_clip.h\"\n" +
		"\n" +
		"unsigned short hero_bone_parent[] = {\n" +
		"    65535,\n" +
		"    0\n" +
		"};\n" +
		"\n" +
		"struct BPAnimationClip hero_walk_clip = {12, 2, hero_walk_data, 30};\n" +
		"\n"
	if buf.String() != want {
		t.Errorf("WriteSource() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestFile_WriteHeader(t *testing.T) {
	f := NewFile()
	f.AddMacro("HERO_ANIM_WALK_INDEX", "0")
	f.AddDefinition(&Definition{
		Type:    "unsigned short",
		Name:    "hero_bone_parent",
		IsArray: true,
		Data:    NewStruct().AddUint(65535),
	})
	f.AddDefinition(&Definition{
		Type: "struct BPAnimationClip",
		Name: "hero_walk_clip",
		Data: NewStruct().AddInt(1),
	})

	var buf bytes.Buffer
	if err := f.WriteHeader(&buf, "__HERO_ANIM_H__"); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	want := "#ifndef __HERO_ANIM_H__\n" +
		"#define __HERO_ANIM_H__\n" +
		"\n" +
		"#define HERO_ANIM_WALK_INDEX 0\n" +
		"\n" +
		"extern unsigned short hero_bone_parent[];\n" +
		"extern struct BPAnimationClip hero_walk_clip;\n" +
		"\n#endif\n"
	if buf.String() != want {
		t.Errorf("WriteHeader() =\n%s\nwant\n%s", buf.String(), want)
	}
}
