package ffmpegsource

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FindTool locates an ffmpeg-suite executable ("ffmpeg" or "ffprobe").
// Priority: 1) custom path, 2) FFMPEG_PATH / FFPROBE_PATH env, 3) PATH, 4) common locations.
func FindTool(name, custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	env := "FFMPEG_PATH"
	if name == "ffprobe" {
		env = "FFPROBE_PATH"
	}
	if envPath := os.Getenv(env); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", ErrFFmpegNotFound, env, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var dirs []string
	switch runtime.GOOS {
	case "windows":
		dirs = []string{`C:\ffmpeg\bin`, `C:\Program Files\ffmpeg\bin`}
	case "darwin":
		dirs = []string{"/opt/homebrew/bin", "/usr/local/bin", "/usr/bin"}
	default:
		dirs = []string{"/usr/bin", "/usr/local/bin", "/snap/bin"}
	}
	for _, dir := range dirs {
		p := dir + string(os.PathSeparator) + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, name)
}

// Available reports whether both ffmpeg and ffprobe can be found.
func Available(opts Options) bool {
	if _, err := FindTool("ffmpeg", opts.FFmpegPath); err != nil {
		return false
	}
	_, err := FindTool("ffprobe", opts.FFprobePath)
	return err == nil
}
