package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const trainData = `w=a	X
w=b	Y
w=a	X

w=b	Y
w=b	Y
w=a	X

w=a	X
w=a	X
`

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	c := New("test")
	var out bytes.Buffer
	c.rootCmd.SetOut(&out)
	c.rootCmd.SetIn(strings.NewReader(stdin))
	c.rootCmd.SetArgs(append([]string{"-s"}, args...))
	if err := c.Run(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestTrainTagReportEvaluate(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "train.txt")
	if err := os.WriteFile(data, []byte(trainData), 0644); err != nil {
		t.Fatal(err)
	}
	modelPath := filepath.Join(dir, "model.json")

	run(t, "", "train", modelPath, "--data", data, "--dev", data, "--store", "dense")
	if _, err := os.Stat(modelPath); err != nil {
		t.Fatalf("model not written: %v", err)
	}

	got := run(t, "w=a\nw=b\n", "tag", "--model", modelPath)
	if want := "w=a\tX\nw=b\tY\n"; got != want {
		t.Errorf("tag output %q, want %q", got, want)
	}

	got = run(t, "", "tag", "--model", modelPath, "--labeled", data)
	if !strings.HasPrefix(got, "w=a\tX\nw=b\tY\nw=a\tX\n\n") {
		t.Errorf("labeled tag output %q", got)
	}

	report := run(t, "", "report", "--model", modelPath)
	for _, section := range []string{"# initial state", "# transitions", "# emissions"} {
		if !strings.Contains(report, section) {
			t.Errorf("report lacks %q", section)
		}
	}

	eval := run(t, "", "evaluate", "--model", modelPath, "--data", data)
	if !strings.Contains(eval, "Token accuracy: 100.0% (8/8)") {
		t.Errorf("evaluate output:\n%s", eval)
	}

	cv := run(t, "", "evaluate", "--data", data, "--cv", "3")
	if !strings.Contains(cv, "/8)") {
		t.Errorf("cross-validation output:\n%s", cv)
	}
}

func TestTrainRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "train.txt")
	if err := os.WriteFile(data, []byte(trainData), 0644); err != nil {
		t.Fatal(err)
	}
	c := New("test")
	c.rootCmd.SetOut(&bytes.Buffer{})
	c.rootCmd.SetErr(&bytes.Buffer{})
	c.rootCmd.SetArgs([]string{"-s", "train", filepath.Join(dir, "m.json"), "--data", data, "--order", "3"})
	if err := c.Run(); err == nil {
		t.Error("order 3 accepted")
	}
}
