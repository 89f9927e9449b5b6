//go:build darwin

package clip

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
// #include <string.h>
//
// NSInteger clipmini_changeCount() {
//     return [[NSPasteboard generalPasteboard] changeCount];
// }
//
// char* clipmini_types() {
//     @autoreleasepool {
//         NSArray *types = [[NSPasteboard generalPasteboard] types];
//         if (types == nil) {
//             return NULL;
//         }
//         NSString *joined = [types componentsJoinedByString:@"\n"];
//         return strdup([joined UTF8String]);
//     }
// }
import "C"

import (
	"log/slog"
	"strings"
	"time"
	"unsafe"

	"golang.design/x/clipboard"
)

const darwinPollInterval = 100 * time.Millisecond

type darwinBackend struct {
	lastChange C.NSInteger
	watchCh    chan struct{}
	done       chan struct{}
}

// New returns the macOS clipboard backend.
// clipboard.Init is called here rather than in init() so that CLI sub-commands
// that never construct a Backend don't log spurious warnings.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard init failed", "err", err)
	}
	b := &darwinBackend{
		lastChange: C.clipmini_changeCount(),
		watchCh:    make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	go b.poll()
	return b
}

func (b *darwinBackend) Name() string { return "macOS NSPasteboard" }

func (b *darwinBackend) poll() {
	t := time.NewTicker(darwinPollInterval)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			cc := C.clipmini_changeCount()
			if cc != b.lastChange {
				b.lastChange = cc
				notify(b.watchCh)
			}
		}
	}
}

// Types returns the pasteboard type identifiers, which is where password
// managers put org.nspasteboard.ConcealedType.
func (b *darwinBackend) Types() ([]string, error) {
	cs := C.clipmini_types()
	if cs == nil {
		return nil, nil
	}
	defer C.free(unsafe.Pointer(cs))
	s := C.GoString(cs)
	if s == "" {
		return nil, nil
	}
	return strings.Split(s, "\n"), nil
}

func (b *darwinBackend) ReadText() ([]byte, error) {
	return clipboard.Read(clipboard.FmtText), nil
}

func (b *darwinBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *darwinBackend) Clear() error {
	clipboard.Write(clipboard.FmtText, []byte{})
	return nil
}

func (b *darwinBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *darwinBackend) Close()                 { close(b.done) }
