package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const traceback = `Traceback (most recent call last):
  File "/data/pygame/demo/main.py", line 12, in <module>
    game.run()
  File "/usr/lib/python3.12/site-packages/pygame/__init__.py", line 88, in run
    self.step()
  File "/data/pygame/demo/game/world.py", line 40, in step
    raise ValueError("bad tile")
ValueError: bad tile
`

func TestParseCrash(t *testing.T) {
	crash := ParseCrash(traceback, "/data/pygame/demo")

	require.Equal(t, "ValueError", crash.Type)
	require.Equal(t, "bad tile", crash.Message)
	require.Equal(t, []Frame{
		{Index: 1, File: "main.py", Line: 12},
		{Index: 3, File: "world.py", Line: 40},
	}, crash.Frames)
}

func TestParseCrash_SiblingProjectIsNotInside(t *testing.T) {
	crash := ParseCrash(`  File "/data/pygame/demo2/main.py", line 1, in <module>
RuntimeError: nope`, "/data/pygame/demo")

	require.Equal(t, "RuntimeError", crash.Type)
	require.Empty(t, crash.Frames)
}

func TestCrashText(t *testing.T) {
	text := ParseCrash(traceback, "/data/pygame/demo").Text("demo", 1)
	require.Equal(t, `Error: 'demo' crashed
Type: ValueError
Message: bad tile
Traceback:
  1 -> File: main.py | Line: 12
  3 -> File: world.py | Line: 40`, text)
}

func TestCrashText_NoException(t *testing.T) {
	text := ParseCrash("Segmentation fault\n", "/data/pygame/demo").Text("demo", 139)
	require.Contains(t, text, "Type: ProcessError")
	require.Contains(t, text, "process exited with code 139")
}

func TestStepReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &stepReporter{out: &buf}
	r.Step(2, 6, "Inspecting project")
	r.Detail("Total files moved: 4")

	require.Contains(t, buf.String(), "2/6")
	require.Contains(t, buf.String(), "Inspecting project")
	require.Contains(t, buf.String(), "  Total files moved: 4\n")
}
