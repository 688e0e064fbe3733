// Package pdump implements a packet dumper that writes inspected packets into a pcapng file.
package pdump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/rxqpoll/rxqpoll/core/logging"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var logger = logging.New("pdump")

// WriterConfig contains writer configuration.
type WriterConfig struct {
	// Filename is the output pcapng file.
	Filename string `json:"filename"`

	// MaxSize is the maximum file size in octets; further packets are dropped.
	MaxSize int `json:"maxSize,omitempty"`

	// SnapLen is the maximum captured length of each packet.
	SnapLen int `json:"snapLen,omitempty"`

	// QueueCapacity is the number of packets buffered between workers and the writer.
	QueueCapacity int `json:"queueCapacity,omitempty"`
}

func (cfg *WriterConfig) applyDefaults() {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultFileSize
	}
	if cfg.SnapLen <= 0 {
		cfg.SnapLen = DefaultSnapLen
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}
	cfg.QueueCapacity = max(cfg.QueueCapacity, MinQueueCapacity)
}

func (cfg WriterConfig) validate() error {
	errs := []error{}
	if cfg.Filename == "" {
		errs = append(errs, errors.New("filename is missing"))
	}
	if cfg.MaxSize < MinFileSize {
		errs = append(errs, fmt.Errorf("file size is less than %d", MinFileSize))
	}
	return multierr.Combine(errs...)
}

// Counters contains writer counters.
type Counters struct {
	Captured  uint64 `json:"captured" gqldesc:"Packets written to the file."`
	Dropped   uint64 `json:"dropped" gqldesc:"Packets dropped due to full queue."`
	Truncated uint64 `json:"truncated" gqldesc:"Packets dropped due to file size limit."`
}

type record struct {
	port    uint16
	ts      time.Time
	origLen int
	data    []byte
}

type countingWriter struct {
	w io.Writer
	n int
}

func (cw *countingWriter) Write(p []byte) (n int, e error) {
	n, e = cw.w.Write(p)
	cw.n += n
	return
}

// Writer writes packets to a pcapng file from a background goroutine.
// Each port is recorded as a pcapng interface.
type Writer struct {
	cfg   WriterConfig
	file  *os.File
	buf   *bufio.Writer
	cw    *countingWriter
	ng    *pcapgo.NgWriter
	intfs map[uint16]int

	closed atomic.Bool
	queue  chan record // never closed
	stop   chan struct{}
	done   chan struct{}

	nCaptured  atomic.Uint64
	nDropped   atomic.Uint64
	nTruncated atomic.Uint64
}

// NewWriter creates the output file and starts the writer goroutine.
func NewWriter(cfg WriterConfig) (w *Writer, e error) {
	cfg.applyDefaults()
	if e := cfg.validate(); e != nil {
		return nil, e
	}

	file, e := os.Create(cfg.Filename)
	if e != nil {
		return nil, e
	}

	w = &Writer{
		cfg:   cfg,
		file:  file,
		buf:   bufio.NewWriter(file),
		intfs: map[uint16]int{},
		queue: make(chan record, cfg.QueueCapacity),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	w.cw = &countingWriter{w: w.buf}
	go w.loop()

	logger.Info("pdump writer open", zap.String("filename", cfg.Filename), zap.Int("snaplen", cfg.SnapLen))
	return w, nil
}

// Inspect copies the packet into the writer queue.
// If the queue is full, the packet is counted as dropped.
// After Close, it does nothing.
func (w *Writer) Inspect(pkt *pktmbuf.Packet, head [2]byte) {
	if w.closed.Load() {
		return
	}
	b := pkt.ZeroCopyBytes()
	rec := record{
		port:    pkt.Port(),
		ts:      time.Now(),
		origLen: len(b),
		data:    append([]byte(nil), b[:min(len(b), w.cfg.SnapLen)]...),
	}
	select {
	case w.queue <- rec:
	default:
		w.nDropped.Add(1)
	}
}

// Counters returns writer counters.
func (w *Writer) Counters() Counters {
	return Counters{
		Captured:  w.nCaptured.Load(),
		Dropped:   w.nDropped.Load(),
		Truncated: w.nTruncated.Load(),
	}
}

func (w *Writer) makeIntf(port uint16) pcapgo.NgInterface {
	intf := pcapgo.DefaultNgInterface
	intf.Name = strconv.Itoa(int(port))
	intf.Description = "port " + intf.Name
	intf.LinkType = layers.LinkTypeEthernet
	intf.SnapLength = uint32(w.cfg.SnapLen)
	return intf
}

func (w *Writer) intfOf(port uint16) (id int, e error) {
	if id, ok := w.intfs[port]; ok {
		return id, nil
	}

	if w.ng == nil {
		wOpt := pcapgo.DefaultNgWriterOptions
		wOpt.SectionInfo.Application = "rxqpoll"
		if w.ng, e = pcapgo.NewNgWriterInterface(w.cw, w.makeIntf(port), wOpt); e != nil {
			return 0, e
		}
		id = 0
	} else if id, e = w.ng.AddInterface(w.makeIntf(port)); e != nil {
		return 0, e
	}
	w.intfs[port] = id
	return id, nil
}

func (w *Writer) write(rec record) error {
	if w.cw.n+len(rec.data) > w.cfg.MaxSize {
		w.nTruncated.Add(1)
		return nil
	}

	id, e := w.intfOf(rec.port)
	if e != nil {
		return e
	}
	ci := gopacket.CaptureInfo{
		Timestamp:      rec.ts,
		CaptureLength:  len(rec.data),
		Length:         rec.origLen,
		InterfaceIndex: id,
	}
	if e := w.ng.WritePacket(ci, rec.data); e != nil {
		return e
	}
	w.nCaptured.Add(1)
	return nil
}

func (w *Writer) loop() {
	defer close(w.done)
	for {
		select {
		case rec := <-w.queue:
			w.handle(rec)
		case <-w.stop:
			for {
				select {
				case rec := <-w.queue:
					w.handle(rec)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) handle(rec record) {
	if e := w.write(rec); e != nil {
		logger.Error("pcapng write error", zap.Uint16("port", rec.port), zap.Error(e))
	}
}

// Close stops the writer goroutine and closes the file.
// Packets already queued are written first.
func (w *Writer) Close() (e error) {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(w.stop)
	<-w.done

	if w.ng != nil {
		e = multierr.Append(e, w.ng.Flush())
	}
	e = multierr.Append(e, w.buf.Flush())
	e = multierr.Append(e, w.file.Close())
	logger.Info("pdump writer closed",
		zap.String("filename", w.cfg.Filename),
		zap.Uint64("captured", w.nCaptured.Load()),
		zap.Uint64("dropped", w.nDropped.Load()),
	)
	return e
}
