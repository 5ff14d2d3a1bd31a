package compose_test

import (
	"strings"
	"testing"
	"time"

	"github.com/promptgram/promptgram/internal/compose"
	"github.com/promptgram/promptgram/internal/domain"
)

func msg(id int, name, text string, ts time.Time) domain.Message {
	return domain.Message{
		ID:        id,
		ChatID:    100,
		Text:      text,
		Timestamp: ts,
		Sender:    &domain.Sender{ID: int64(id), FirstName: name},
	}
}

func TestCompose_SubstitutesPlaceholderOnce(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "first", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
		msg(2, "Bob", "second", time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC)),
	}

	out := compose.Compose("Post: {{messages}}", msgs, "en")

	if strings.Contains(out, "{{messages}}") {
		t.Errorf("output still contains placeholder: %q", out)
	}
	if !strings.Contains(out, "Alice: first") || !strings.Contains(out, "Bob: second") {
		t.Errorf("rendered messages missing: %q", out)
	}
	// Blocks are separated by exactly one blank line.
	if !strings.Contains(out, "first\n\n[") {
		t.Errorf("blocks not blank-line separated: %q", out)
	}
}

func TestCompose_LanguagePrefixWhenUnmentioned(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "hello", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
	}

	out := compose.Compose("Post: {{messages}}", msgs, "en")
	if !strings.HasPrefix(out, "Please respond in English. Post: ") {
		t.Errorf("missing language instruction prefix: %q", out)
	}
}

func TestCompose_NoPrefixWhenLanguageMentioned(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "hello", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
	}

	out := compose.Compose("Write in german: {{messages}}", msgs, "de")
	if strings.HasPrefix(out, "Please respond in") {
		t.Errorf("unexpected language prefix: %q", out)
	}
}

func TestCompose_BodyWithoutPlaceholderPassesThrough(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "hello", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
	}

	out := compose.Compose("Just a fixed prompt.", msgs, "fr")
	if out != "Please respond in French. Just a fixed prompt." {
		t.Errorf("out = %q", out)
	}
}

func TestCompose_OnlyFirstPlaceholderSubstituted(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "x", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
	}

	out := compose.Compose("a {{messages}} b {{messages}}", msgs, "en")
	if strings.Count(out, "{{messages}}") != 1 {
		t.Errorf("want exactly one remaining literal placeholder: %q", out)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "Alice", "first", time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
		msg(2, "Bob", "second", time.Date(2024, 3, 1, 9, 31, 0, 0, time.UTC)),
	}
	body := compose.TemplateByID("twitter").Body

	a := compose.Compose(body, msgs, "es")
	b := compose.Compose(body, msgs, "es")
	if a != b {
		t.Error("Compose is not deterministic for identical inputs")
	}
}

func TestCompose_InsertionOrderPreserved(t *testing.T) {
	msgs := []domain.Message{
		msg(9, "Zoe", "selected first", time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)),
		msg(3, "Ann", "selected second", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)),
	}

	out := compose.RenderMessages(msgs)
	if strings.Index(out, "Zoe") > strings.Index(out, "Ann") {
		t.Errorf("selection order not preserved: %q", out)
	}
}

func TestCompose_UnknownSender(t *testing.T) {
	m := domain.Message{ID: 1, Text: "orphan", Timestamp: time.Unix(0, 0)}
	out := compose.RenderMessages([]domain.Message{m})
	if !strings.Contains(out, "Unknown: orphan") {
		t.Errorf("out = %q", out)
	}
}

func TestTemplateByID(t *testing.T) {
	if got := compose.TemplateByID("twitter"); got.Platform != domain.PlatformTwitter {
		t.Errorf("twitter template platform = %q", got.Platform)
	}
	if got := compose.TemplateByID("nope"); got.ID != compose.DefaultTemplateID {
		t.Errorf("unknown id resolved to %q, want default", got.ID)
	}
}

func TestLanguageName(t *testing.T) {
	if got := compose.LanguageName("ru"); got != "Russian" {
		t.Errorf("LanguageName(ru) = %q", got)
	}
	if got := compose.LanguageName("xx"); got != "English" {
		t.Errorf("LanguageName(xx) = %q, want English fallback", got)
	}
}
