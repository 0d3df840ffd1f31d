// Command validate checks a rules YAML file for structural and data
// integrity problems before it is deployed: schema validity, duplicate
// gazetteer names, fallback targets that do not resolve, suspicious
// coordinates, and threat vocabulary issues. Hard violations fail the run;
// known dataset quirks (duplicate names) are reported as warnings.
//
// Usage:
//
//	go run ./cmd/validate -rules configs/rules.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/valleywatch/news-threat-etl/internal/rules"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rulesPath := flag.String("rules", "", "path to the rules YAML file (empty validates the embedded default)")
	flag.Parse()

	if code := run(*rulesPath); code != 0 {
		os.Exit(code)
	}
}

func run(rulesPath string) int {
	f, err := rules.Load(rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL schema: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkGazetteer(f),
		checkThreat(f),
		checkResolver(f),
	}

	failed := false
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			failed = true
		}
		fmt.Printf("%s %s\n", status, p.name)
		for _, w := range p.warnings {
			fmt.Printf("  warn: %s\n", w)
		}
		for _, e := range p.errors {
			fmt.Printf("  error: %s\n", e)
		}
	}

	if failed {
		return 1
	}
	return 0
}

func checkGazetteer(f *rules.File) *phase {
	p := &phase{name: "gazetteer"}

	seen := map[string]int{}
	for _, place := range f.Places {
		seen[place.Name]++
		// The deployment region sits well inside these bounds; anything
		// outside is almost certainly a typo.
		if place.Lat < 25 || place.Lat > 40 {
			p.errorf("%s: latitude %.4f outside plausible range", place.Name, place.Lat)
		}
		if place.Lng < 70 || place.Lng > 80 {
			p.errorf("%s: longitude %.4f outside plausible range", place.Name, place.Lng)
		}
	}
	for name, n := range seen {
		if n > 1 {
			p.warnf("%s defined %d times (last definition wins)", name, n)
		}
	}
	return p
}

func checkThreat(f *rules.File) *phase {
	p := &phase{name: "threat vocabulary"}

	seen := map[string]bool{}
	for _, kw := range f.Threat.Keywords {
		if seen[kw.Term] {
			p.errorf("keyword %q defined twice", kw.Term)
		}
		seen[kw.Term] = true
		if kw.Weight > 2 {
			p.warnf("keyword %q has weight %d, above the documented 1-2 scale", kw.Term, kw.Weight)
		}
	}
	if f.Threat.Threshold > 2 {
		p.warnf("threshold %d is above the documented default of 2", f.Threat.Threshold)
	}
	return p
}

func checkResolver(f *rules.File) *phase {
	p := &phase{name: "resolver fallbacks"}

	gaz := f.Gazetteer()
	for _, tier := range []struct {
		name  string
		rules []rules.Fallback
	}{
		{"region", f.Resolver.RegionKeywords},
		{"context", f.Resolver.ContextKeywords},
	} {
		seen := map[string]bool{}
		for _, fb := range tier.rules {
			if seen[fb.Keyword] {
				p.errorf("%s keyword %q defined twice", tier.name, fb.Keyword)
			}
			seen[fb.Keyword] = true
			if _, ok := gaz.Lookup(fb.Place); !ok {
				p.errorf("%s keyword %q targets unknown place %q", tier.name, fb.Keyword, fb.Place)
			}
		}
	}
	for _, name := range f.Resolver.DefaultPool {
		if _, ok := gaz.Lookup(name); !ok {
			p.errorf("default pool entry %q is not a gazetteer place", name)
		}
	}
	return p
}
