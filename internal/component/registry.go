// Package component maps client-side custom elements to the scripts they depend on
// and computes the load order for a page.
package component

import (
	"fmt"
	"maps"
	"sort"
)

// Registry maps a component script path, relative to the client js directory, to its direct dependencies.
type Registry map[string][]string

// IconLink is loaded by the page layout itself and never appears in resolved lists.
const IconLink = "base/icon-link.js"

var baseRegister = Registry{
	"base/app-footer.js": {},
	"base/app-header.js": {},
	"base/app-page.js": {
		"base/app-footer.js",
		"base/app-header.js",
	},
	IconLink: {},
}

var formsRegister = Registry{
	"forms/mom-login.js":   {"inputs/mom-form.js"},
	"forms/mom-sign-up.js": {"inputs/mom-form.js"},
}

var inputsRegister = Registry{
	"inputs/mom-company-input.js": {"inputs/mom-asset-bullet.js"},
	"inputs/mom-form.js":          {"inputs/mom-form-section.js"},
	"inputs/mom-form-section.js": {
		"inputs/mom-company-input.js",
		"inputs/mom-input.js",
		"inputs/mom-text-area.js",
		"inputs/mom-user-input.js",
		"inputs/mom-select.js",
	},
	"inputs/mom-input.js": {
		"inputs/mom-input-core.js",
		"inputs/limit-widget.js",
	},
	"inputs/mom-asset-bullet.js": {"inputs/mom-input-core.js"},
	"inputs/mom-input-core.js":   {},
	"inputs/mom-text-area.js": {
		"inputs/mom-input-core.js",
		"inputs/limit-widget.js",
	},
	"inputs/mom-select.js":     {"inputs/mom-input-core.js"},
	"inputs/mom-user-input.js": {"inputs/mom-asset-bullet.js"},
	"inputs/limit-widget.js":   {},
}

var specRegister = Registry{
	"spec/dash/mom-date-liner.js":  {},
	"spec/dash/mom-main-search.js": {},
	"spec/dash/mom-weather-line.js": {
		"spec/util/WeatherLookup.js",
	},
	"spec/util/WeatherLookup.js": {},
	"spec/mom-article.js":        {"spec/mom-topic-card.js"},
	"spec/mom-dashboard.js": {
		"spec/dash/mom-date-liner.js",
		"spec/dash/mom-weather-line.js",
		"spec/mom-topic-card.js",
		"spec/dash/mom-main-search.js",
	},
	"spec/mom-skill-set.js":  {"spec/mom-topic-card.js"},
	"spec/mom-topic-card.js": {},
}

// Top-level components rendered by the page templates.
const (
	Dashboard = "spec/mom-dashboard.js"
	SkillSet  = "spec/mom-skill-set.js"
	Article   = "spec/mom-article.js"
	Login     = "forms/mom-login.js"
	SignUp    = "forms/mom-sign-up.js"
)

// DefaultRegistry merges the base, forms, inputs and spec registers. Later registers win on key clashes.
func DefaultRegistry() Registry {
	reg := Registry{}
	for _, r := range []Registry{baseRegister, formsRegister, inputsRegister, specRegister} {
		maps.Copy(reg, r)
	}
	return reg
}

// Validate reports the first dependency that is not itself registered.
func (r Registry) Validate() error {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, dep := range r[k] {
			if _, ok := r[dep]; !ok {
				return fmt.Errorf("%s depends on %s: %w", k, dep, ErrUnknownComponent)
			}
		}
	}
	return nil
}
