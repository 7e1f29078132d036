package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/momager/momager-core/internal/component"
)

type generator struct {
	name   string
	bin    string
	args   []string
	skipFn func() bool
	runFn  func() error // custom run function (if set, bin/args ignored)
}

var installHints = map[string]string{
	"templ":       "go install github.com/a-h/templ/cmd/templ@v0.3.960",
	"tailwindcss": "https://tailwindcss.com/blog/standalone-cli",
}

func GenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Run code generators (templ, tailwind) and check the component registry in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
}

func runGen() error {
	generators := []generator{
		{
			name:   "tailwindcss",
			bin:    "tailwindcss",
			args:   []string{"-i", "client/css/input.css", "-o", "client/css/main.css", "--minify"},
			skipFn: skipTailwind,
		},
		{
			name:   "templ",
			bin:    "templ",
			args:   []string{"generate"},
			skipFn: skipTempl,
		},
		{
			name:  "registry",
			runFn: checkRegistry,
		},
	}

	start := time.Now()
	var wg sync.WaitGroup
	errCh := make(chan error, len(generators))

	for _, g := range generators {
		wg.Add(1)
		go func(g generator) {
			defer wg.Done()

			if g.skipFn != nil && g.skipFn() {
				fmt.Printf("[%s] skipped\n", g.name)
				return
			}

			genStart := time.Now()
			var err error
			if g.runFn != nil {
				err = g.runFn()
			} else {
				if _, lookErr := exec.LookPath(g.bin); lookErr != nil {
					errCh <- fmt.Errorf("%s: missing binary (%s)", g.name, installHints[g.bin])
					return
				}
				cmd := exec.Command(g.bin, g.args...)
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
				err = cmd.Run()
			}

			if err != nil {
				errCh <- fmt.Errorf("%s: %w", g.name, err)
				return
			}

			fmt.Printf("[%s] done (%s)\n", g.name, time.Since(genStart).Round(time.Millisecond))
		}(g)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Println("error:", err)
		}
		return fmt.Errorf("generation failed")
	}

	fmt.Printf("done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// checkRegistry validates the registry and that every registered script exists under client/js.
func checkRegistry() error {
	registry := component.DefaultRegistry()
	err := registry.Validate()
	if err != nil {
		return err
	}

	var missing []string
	for path := range registry {
		if _, err := os.Stat(filepath.Join("client", "js", path)); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("registered scripts missing from client/js: %s", strings.Join(missing, ", "))
	}
	return nil
}

func skipTailwind() bool {
	if _, err := os.Stat("client/css/input.css"); err != nil {
		return true
	}
	inputs := []string{"client/css/input.css"}
	_ = filepath.WalkDir("internal/ui", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") || strings.HasSuffix(path, ".go") {
			inputs = append(inputs, path)
		}
		return nil
	})
	jsFiles, _ := filepath.Glob("client/js/*/*.js")
	inputs = append(inputs, jsFiles...)
	return isUpToDate("client/css/main.css", inputs)
}

// skipTempl reports whether every .templ file is older than its generated _templ.go.
func skipTempl() bool {
	var templFiles []string
	_ = filepath.WalkDir("internal", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") {
			templFiles = append(templFiles, path)
		}
		return nil
	})

	for _, templFile := range templFiles {
		outFile := strings.TrimSuffix(templFile, ".templ") + "_templ.go"
		if !isUpToDate(outFile, []string{templFile}) {
			return false
		}
	}
	return true
}

func isUpToDate(output string, inputs []string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	outMod := outInfo.ModTime()

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err != nil {
			continue
		}
		if inInfo.ModTime().After(outMod) {
			return false
		}
	}
	return true
}
