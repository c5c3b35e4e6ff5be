package visualization

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser launches the platform's URL opener and returns without
// waiting for it.
func OpenBrowser(url string) error {
	name, args, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func browserCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	}
	return "", nil, fmt.Errorf("no browser opener for %s", goos)
}
