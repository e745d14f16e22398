package routing

import (
	"testing"

	"redirect-router/internal/classifier"
)

func boolPtr(b bool) *bool { return &b }

func newTestEngine(t *testing.T, cfg *RouteConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, nopLogger{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNewEngine_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *RouteConfig
		wantErr bool
	}{
		{
			name:    "no rules",
			cfg:     &RouteConfig{},
			wantErr: true,
		},
		{
			name: "missing target",
			cfg: &RouteConfig{
				Rules: []RouteRule{{ID: "r1"}},
			},
			wantErr: true,
		},
		{
			name: "relative target",
			cfg: &RouteConfig{
				Rules: []RouteRule{{ID: "r1", Target: "/just/a/path"}},
			},
			wantErr: true,
		},
		{
			name: "bad status",
			cfg: &RouteConfig{
				Rules: []RouteRule{{ID: "r1", Target: "https://p.example/go", Status: 42}},
			},
			wantErr: true,
		},
		{
			name: "valid",
			cfg: &RouteConfig{
				Rules: []RouteRule{{ID: "r1", Target: "https://p.example/go"}},
			},
			wantErr: false,
		},
		{
			name: "invalid regex tolerated",
			cfg: &RouteConfig{
				Rules: []RouteRule{{
					ID:     "r1",
					Match:  MatchRule{Pattern: []string{"[broken"}},
					Target: "https://p.example/go",
				}},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg, nopLogger{})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompiledRuleMatches(t *testing.T) {
	tests := []struct {
		name string
		rule RouteRule
		ctx  RequestContext
		want bool
	}{
		{
			name: "empty predicate matches everything",
			rule: RouteRule{Target: "https://p.example/go"},
			ctx:  RequestContext{Path: "/anything", Device: classifier.DeviceDesktop},
			want: true,
		},
		{
			name: "path constraint holds",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Path: []string{"/casino/*"}}},
			ctx:  RequestContext{Path: "/casino/888starz"},
			want: true,
		},
		{
			name: "path constraint rejects",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Path: []string{"/casino/*"}}},
			ctx:  RequestContext{Path: "/poker/x"},
			want: false,
		},
		{
			name: "pattern constraint holds",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Pattern: []string{`^/casino/\d+`}}},
			ctx:  RequestContext{Path: "/casino/42"},
			want: true,
		},
		{
			name: "pattern constraint rejects",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Pattern: []string{`^/casino/\d+`}}},
			ctx:  RequestContext{Path: "/casino/abc"},
			want: false,
		},
		{
			name: "all patterns invalid rejects",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Pattern: []string{"[broken"}}},
			ctx:  RequestContext{Path: "/casino/42"},
			want: false,
		},
		{
			name: "country member",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Countries: []string{"ru", "KZ"}}},
			ctx:  RequestContext{Path: "/x", Country: "RU"},
			want: true,
		},
		{
			name: "country not member",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Countries: []string{"RU"}}},
			ctx:  RequestContext{Path: "/x", Country: "DE"},
			want: false,
		},
		{
			name: "country constraint with empty country rejects",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Countries: []string{"RU"}}},
			ctx:  RequestContext{Path: "/x"},
			want: false,
		},
		{
			name: "device member",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Devices: []string{"mobile"}}},
			ctx:  RequestContext{Path: "/x", Device: classifier.DeviceMobile},
			want: true,
		},
		{
			name: "device not member",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Devices: []string{"mobile"}}},
			ctx:  RequestContext{Path: "/x", Device: classifier.DeviceTablet},
			want: false,
		},
		{
			name: "device wildcard any",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Devices: []string{"any"}}},
			ctx:  RequestContext{Path: "/x", Device: classifier.DeviceDesktop},
			want: true,
		},
		{
			name: "bot required rejects non-bot",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Bot: boolPtr(true)}},
			ctx:  RequestContext{Path: "/x"},
			want: false,
		},
		{
			name: "bot excluded rejects bot",
			rule: RouteRule{Target: "https://p.example/go", Match: MatchRule{Bot: boolPtr(false)}},
			ctx:  RequestContext{Path: "/x", Bot: true},
			want: false,
		},
		{
			name: "bot absent does not care",
			rule: RouteRule{Target: "https://p.example/go"},
			ctx:  RequestContext{Path: "/x", Bot: true},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled := mustCompileRule(t, &tt.rule)
			if got := compiled.matches(&tt.ctx); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngineRoute_FirstMatchWins(t *testing.T) {
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{
			{ID: "first", Match: MatchRule{Path: []string{"/x"}}, Target: "https://first.example/"},
			{ID: "second", Match: MatchRule{Path: []string{"/x"}}, Target: "https://second.example/"},
		},
	})

	decision := engine.Route(&RequestContext{Path: "/x"}, mustParseURL(t, "https://site.example/x"))
	if !decision.Redirect {
		t.Fatal("Route() should redirect")
	}
	if decision.RuleID != "first" {
		t.Errorf("Route() matched rule %q, want %q (declaration order wins)", decision.RuleID, "first")
	}
}

func TestEngineRoute_DefaultStatus(t *testing.T) {
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{{ID: "r", Target: "https://p.example/go"}},
	})

	decision := engine.Route(&RequestContext{Path: "/x"}, mustParseURL(t, "https://site.example/x"))
	if decision.Status != 302 {
		t.Errorf("Route() status = %d, want 302 default", decision.Status)
	}
}

func TestEngineRoute_FaultyRuleSkipped(t *testing.T) {
	// A rule whose regex sources are all broken never matches; subsequent
	// rules still get evaluated.
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{
			{ID: "broken", Match: MatchRule{Pattern: []string{"[broken"}}, Target: "https://broken.example/"},
			{ID: "ok", Target: "https://ok.example/"},
		},
	})

	decision := engine.Route(&RequestContext{Path: "/x"}, mustParseURL(t, "https://site.example/x"))
	if decision.RuleID != "ok" {
		t.Errorf("Route() matched rule %q, want %q", decision.RuleID, "ok")
	}
}

func TestEngineRoute_FallbackDefaults(t *testing.T) {
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{
			{ID: "r", Match: MatchRule{Path: []string{"/only-this"}}, Target: "https://p.example/go"},
		},
	})

	decision := engine.Route(&RequestContext{Path: "/other"}, mustParseURL(t, "https://site.example/other"))
	if decision.Redirect {
		t.Fatal("Route() should fall back")
	}
	if decision.Status != 204 {
		t.Errorf("fallback status = %d, want 204 default", decision.Status)
	}
	if decision.Body != "" {
		t.Errorf("fallback body = %q, want empty", decision.Body)
	}
}

func TestEngineRoute_ConfiguredFallback(t *testing.T) {
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{
			{ID: "r", Match: MatchRule{Path: []string{"/only-this"}}, Target: "https://p.example/go"},
		},
		Fallback: &FallbackConfig{Response: &FallbackResponse{
			Status:  200,
			Headers: map[string]string{"Content-Type": "text/plain"},
			Body:    "nothing here",
		}},
	})

	decision := engine.Route(&RequestContext{Path: "/other"}, mustParseURL(t, "https://site.example/other"))
	if decision.Status != 200 || decision.Body != "nothing here" {
		t.Errorf("fallback = %d %q, want 200 %q", decision.Status, decision.Body, "nothing here")
	}
	if decision.Headers["Content-Type"] != "text/plain" {
		t.Errorf("fallback headers = %v", decision.Headers)
	}
}

func TestEngineRoute_FullScenario(t *testing.T) {
	engine := newTestEngine(t, &RouteConfig{
		Rules: []RouteRule{{
			ID: "ru-mobile",
			Match: MatchRule{
				Path:      []string{"/casino/*"},
				Countries: []string{"RU"},
				Devices:   []string{"mobile"},
				Bot:       boolPtr(false),
			},
			Target:        "https://2win.click/tds/go.cgi?4",
			Status:        302,
			TrackingParam: "src",
			TrackingValue: "mobile-geo",
		}},
	})
	reqURL := mustParseURL(t, "https://site.example/casino/888starz")

	ctx := &RequestContext{Path: "/casino/888starz", Country: "RU", Device: classifier.DeviceMobile}
	decision := engine.Route(ctx, reqURL)
	if !decision.Redirect || decision.Status != 302 {
		t.Fatalf("Route() = %+v, want 302 redirect", decision)
	}
	if want := "https://2win.click/tds/go.cgi?4&src=mobile-geo"; decision.Location != want {
		t.Errorf("Location = %q, want %q", decision.Location, want)
	}

	// Wrong country falls back.
	ctx = &RequestContext{Path: "/casino/888starz", Country: "DE", Device: classifier.DeviceMobile}
	if decision := engine.Route(ctx, reqURL); decision.Redirect {
		t.Error("Route() should fall back for country DE")
	}

	// Crawlers are rejected by bot:false regardless of other dimensions.
	ctx = &RequestContext{Path: "/casino/888starz", Country: "RU", Device: classifier.DeviceMobile, Bot: true}
	if decision := engine.Route(ctx, reqURL); decision.Redirect {
		t.Error("Route() should fall back for crawler traffic")
	}
}

func TestContext(t *testing.T) {
	ctx := Context("/casino/1", "ru", classifier.Result{Device: classifier.DeviceTablet, Bot: true})

	if ctx.Country != "RU" {
		t.Errorf("Context() country = %q, want normalized %q", ctx.Country, "RU")
	}
	if ctx.Path != "/casino/1" || ctx.Device != classifier.DeviceTablet || !ctx.Bot {
		t.Errorf("Context() = %+v", ctx)
	}
}

func TestParamValueString(t *testing.T) {
	tests := []struct {
		value ParamValue
		want  string
	}{
		{StringParam("abc"), "abc"},
		{NumberParam(4), "4"},
		{NumberParam(1.5), "1.5"},
		{BoolParam(true), "true"},
		{BoolParam(false), "false"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("ParamValue.String() = %q, want %q", got, tt.want)
		}
	}
}
