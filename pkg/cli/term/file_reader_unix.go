//go:build unix

package term

import (
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"src.bootcon.sh/pkg/sys"
)

// NewReader creates a Reader on a terminal file. Unlike a stream Reader it
// polls the file directly, so no input is consumed until ReadKey is called.
func NewReader(f *os.File) (*Reader, error) {
	fr, err := newFileReader(f)
	if err != nil {
		return nil, err
	}
	return &Reader{fr}, nil
}

func newFileReader(file *os.File) (*fileReader, error) {
	rStop, wStop, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &fileReader{file: file, rStop: rStop, wStop: wStop}, nil
}

type fileReader struct {
	file  *os.File
	rStop *os.File
	wStop *os.File
	// Held while a read is in progress.
	mutex sync.Mutex
}

func (r *fileReader) ReadByteWithTimeout(timeout time.Duration) (byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for {
		ready, err := sys.WaitForRead(timeout, r.file, r.rStop)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return 0, err
		}
		if ready[1] {
			var b [1]byte
			r.rStop.Read(b[:])
			return 0, ErrStopped
		}
		if !ready[0] {
			return 0, errTimeout
		}
		var b [1]byte
		nr, err := r.file.Read(b[:])
		if err != nil {
			return 0, err
		}
		if nr != 1 {
			return 0, io.ErrNoProgress
		}
		return b[0], nil
	}
}

func (r *fileReader) Pending() bool {
	ready, err := sys.WaitForRead(0, r.file)
	return err == nil && ready[0]
}

func (r *fileReader) Stop() {
	r.wStop.Write([]byte{'q'})
	r.mutex.Lock()
	r.mutex.Unlock()
	r.rStop.Close()
	r.wStop.Close()
}
