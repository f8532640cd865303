package i18n

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

// TestPageMessages covers the message IDs rendered by the HTML views and
// exports, in every shipped locale.
func TestPageMessages(t *testing.T) {
	tests := []struct {
		id    string
		data  map[string]any
		count int // used with Tp when > 0
		en    string
		es    string
	}{
		{id: "AppTitle", en: "Test Generator", es: "Generador de Tests"},
		{id: "NavHome", en: "Question bank", es: "Banco de preguntas"},
		{id: "NavResults", en: "Results", es: "Resultados"},
		{id: "ScoreButton", en: "Calculate score", es: "Calcular puntuación"},
		{id: "NoAnswer", en: "No answer", es: "Sin responder"},
		{id: "TotalScore", en: "Total score", es: "Puntuación final"},
		{id: "Correct", en: "Correct", es: "Correctas"},
		{id: "Incorrect", en: "Incorrect", es: "Incorrectas"},
		{id: "NoTest", en: "No test has been generated yet.", es: "Todavía no se ha generado ningún test."},
		{id: "TestFor", data: map[string]any{"User": "Ana"}, en: "Test for Ana", es: "Test de Ana"},
		{
			id:   "BankLoaded",
			data: map[string]any{"Count": 42, "Source": "bank.xlsx"},
			en:   "Loaded 42 questions from bank.xlsx.",
			es:   "Cargadas 42 preguntas de bank.xlsx.",
		},
		{
			id:   "InvalidCount",
			data: map[string]any{"Max": 20},
			en:   "The number of questions must be between 1 and 20.",
			es:   "La cantidad de preguntas debe estar entre 1 y 20.",
		},
		{id: "QuestionsAvailable", count: 1, en: "1 question available.", es: "1 pregunta disponible."},
		{id: "QuestionsAvailable", count: 5, en: "5 questions available.", es: "5 preguntas disponibles."},
	}

	for _, lang := range []string{"en", "es"} {
		ctx := initLang(t, lang)
		for _, tt := range tests {
			want := tt.en
			if lang == "es" {
				want = tt.es
			}
			var got string
			switch {
			case tt.count > 0:
				got = Tp(ctx, tt.id, tt.count)
			case tt.data != nil:
				got = Td(ctx, tt.id, tt.data)
			default:
				got = T(ctx, tt.id)
			}
			if got != want {
				t.Errorf("%s: %s = %q, want %q", lang, tt.id, got, want)
			}
		}
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLocalesHaveSameKeys(t *testing.T) {
	keys := func(name string) map[string]bool {
		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var m map[string]any
		if err := jsonUnmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		out := make(map[string]bool, len(m))
		for k := range m {
			out[k] = true
		}
		return out
	}
	en, es := keys("en.json"), keys("es.json")
	for k := range en {
		if !es[k] {
			t.Errorf("es.json is missing %q", k)
		}
	}
	for k := range es {
		if !en[k] {
			t.Errorf("en.json is missing %q", k)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"en", "en", nil},
		{"en-US", "en", nil},
		{"es", "es", nil},
		{"es-MX", "es", nil},
		{"auto", "auto", nil},
		{"ru", "", ErrUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Resolve(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if _, err := Resolve("not a tag!"); err == nil {
		t.Error("expected parse error")
	}
	if err := Init("ru"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Init(ru) error = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestMiddleware(t *testing.T) {
	if err := Init(Auto); err != nil {
		t.Fatalf("Init(auto): %v", err)
	}
	title := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(T(r.Context(), "AppTitle")))
	})

	tests := []struct {
		name   string
		lang   string
		accept string
		want   string
	}{
		{"fixed ignores header", "en", "es", "Test Generator"},
		{"fixed spanish", "es", "", "Generador de Tests"},
		{"auto spanish", Auto, "es-ES,es;q=0.9,en;q=0.5", "Generador de Tests"},
		{"auto english", Auto, "en-GB", "Test Generator"},
		{"auto unknown falls back", Auto, "ru", "Test Generator"},
		{"auto no header", Auto, "", "Test Generator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rec := httptest.NewRecorder()
			Middleware(tt.lang)(title).ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
