//go:build windows

package clip

// #cgo LDFLAGS: -luser32
//
// #include <windows.h>
// #include <stdlib.h>
//
// static HWND clipmini_create_listener_window();
// static void clipmini_pump_messages(HWND hwnd, int* changed);
//
// static LRESULT CALLBACK clipmini_wnd_proc(HWND hwnd, UINT msg, WPARAM wp, LPARAM lp) {
//     if (msg == WM_CLIPBOARDUPDATE) {
//         PostMessage(hwnd, WM_USER + 1, 0, 0);
//         return 0;
//     }
//     return DefWindowProc(hwnd, msg, wp, lp);
// }
//
// static HWND clipmini_create_listener_window() {
//     WNDCLASS wc = {0};
//     wc.lpfnWndProc   = clipmini_wnd_proc;
//     wc.hInstance     = GetModuleHandle(NULL);
//     wc.lpszClassName = "ClipminiClipboard";
//     RegisterClass(&wc);
//     HWND hwnd = CreateWindowEx(0, "ClipminiClipboard", NULL, 0,
//         0, 0, 0, 0, HWND_MESSAGE, NULL, GetModuleHandle(NULL), NULL);
//     AddClipboardFormatListener(hwnd);
//     return hwnd;
// }
//
// static void clipmini_pump_messages(HWND hwnd, int* changed) {
//     MSG msg;
//     *changed = 0;
//     while (PeekMessage(&msg, hwnd, 0, 0, PM_REMOVE)) {
//         if (msg.message == WM_USER + 1) { *changed = 1; }
//         TranslateMessage(&msg);
//         DispatchMessage(&msg);
//     }
// }
//
// static int clipmini_has_format(const char* name) {
//     UINT f = RegisterClipboardFormatA(name);
//     return f != 0 && IsClipboardFormatAvailable(f);
// }
import "C"

import (
	"log/slog"
	"time"
	"unsafe"

	"golang.design/x/clipboard"
)

// markerFormats are the registered clipboard formats Windows applications use
// to keep content out of clipboard history. Windows cannot enumerate format
// names cheaply, so only these are checked.
var markerFormats = []string{
	"ExcludeClipboardContentFromMonitorProcessing",
	"Clipboard Viewer Ignore",
}

type windowsBackend struct {
	hwnd    C.HWND
	watchCh chan struct{}
	done    chan struct{}
}

// New returns the Windows clipboard backend using AddClipboardFormatListener.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed", "err", err)
	}
	hwnd := C.clipmini_create_listener_window()
	b := &windowsBackend{
		hwnd:    hwnd,
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *windowsBackend) Name() string { return "Windows Clipboard" }

func (b *windowsBackend) pump() {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			var changed C.int
			C.clipmini_pump_messages(b.hwnd, &changed)
			if changed != 0 {
				notify(b.watchCh)
			}
		}
	}
}

func (b *windowsBackend) Types() ([]string, error) {
	var present []string
	for _, name := range markerFormats {
		cs := C.CString(name)
		ok := C.clipmini_has_format(cs) != 0
		C.free(unsafe.Pointer(cs))
		if ok {
			present = append(present, name)
		}
	}
	return present, nil
}

func (b *windowsBackend) ReadText() ([]byte, error) {
	return clipboard.Read(clipboard.FmtText), nil
}

func (b *windowsBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *windowsBackend) Clear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

func (b *windowsBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *windowsBackend) Close()                 { close(b.done) }
