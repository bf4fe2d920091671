package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// E2EAsmTestSpec is a single end-to-end compile-to-assembly test case.
type E2EAsmTestSpec struct {
	Name        string   `yaml:"name"`
	Input       string   `yaml:"input"`
	Expect      []string `yaml:"expect"`       // Strings that must appear in output
	ExpectOrder []string `yaml:"expect_order"` // Strings that must appear in this order
	Skip        string   `yaml:"skip,omitempty"`
}

// E2EAsmTestFile is the testdata/e2e_asm.yaml file structure.
type E2EAsmTestFile struct {
	Tests []E2EAsmTestSpec `yaml:"tests"`
}

// TestE2EAsmYAML runs the six documented end-to-end compile scenarios.
func TestE2EAsmYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/e2e_asm.yaml")
	if err != nil {
		t.Fatalf("e2e_asm.yaml not found: %v", err)
	}

	var testFile E2EAsmTestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse e2e_asm.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			tmpDir := t.TempDir()
			testCFile := filepath.Join(tmpDir, "test.c")
			if err := os.WriteFile(testCFile, []byte(tc.Input), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			resetDebugFlags()
			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs([]string{testCFile})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("minccc failed: %v\nStderr: %s", err, errOut.String())
			}

			output := out.String()
			for _, exp := range tc.Expect {
				if !strings.Contains(output, exp) {
					t.Errorf("expected output to contain %q\nGot:\n%s", exp, output)
				}
			}

			if len(tc.ExpectOrder) > 0 {
				// Each pattern is searched for after the end of the previous
				// match, so an earlier occurrence of the same text (such as
				// the prologue's sub) does not satisfy a later position.
				lastEnd := 0
				for _, exp := range tc.ExpectOrder {
					if !strings.Contains(output, exp) {
						t.Errorf("expected output to contain %q for order check\nGot:\n%s", exp, output)
						continue
					}
					idx := strings.Index(output[lastEnd:], exp)
					if idx == -1 {
						t.Errorf("expected %q to appear after the previous pattern (searching from position %d)\nGot:\n%s", exp, lastEnd, output)
						continue
					}
					lastEnd += idx + len(exp)
				}
			}
		})
	}
}
