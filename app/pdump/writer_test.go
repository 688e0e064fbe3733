package pdump_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gopacket/gopacket/layers"
	"github.com/gopacket/gopacket/pcapgo"
	"github.com/rxqpoll/rxqpoll/app/pdump"
	"github.com/rxqpoll/rxqpoll/core/testenv"
	"github.com/rxqpoll/rxqpoll/dpdk/pktmbuf"
)

func TestWriter(t *testing.T) {
	assert, require := makeAR(t)
	dir := t.TempDir()
	filename := filepath.Join(dir, "a.pcapng")

	_, e := pdump.NewWriter(pdump.WriterConfig{})
	assert.Error(e)
	_, e = pdump.NewWriter(pdump.WriterConfig{Filename: filename, MaxSize: 1000})
	assert.Error(e)

	pool, e := pktmbuf.NewPool(pktmbuf.PoolConfig{Capacity: 63})
	require.NoError(e)
	defer pool.Close()

	w, e := pdump.NewWriter(pdump.WriterConfig{Filename: filename, SnapLen: 100})
	require.NoError(e)

	payloads := [][]byte{make([]byte, 60), make([]byte, 300)}
	for i, payload := range payloads {
		testenv.RandBytes(payload)
		vec, e := pool.Alloc(1)
		require.NoError(e)
		require.NoError(vec[0].Append(payload))
		vec[0].SetPort(uint16(4 + i))
		w.Inspect(vec[0], [2]byte{payload[0], payload[1]})
		vec.Close()
	}
	require.NoError(w.Close())
	require.NoError(w.Close())
	assert.Equal(pdump.Counters{Captured: 2}, w.Counters())
	assert.Equal(0, pool.CountInUse())

	f, e := os.Open(filename)
	require.NoError(e)
	defer f.Close()
	r, e := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
	require.NoError(e)

	data, ci, e := r.ReadPacketData()
	require.NoError(e)
	assert.Equal(payloads[0], data)
	assert.Equal(60, ci.Length)

	data, ci, e = r.ReadPacketData()
	require.NoError(e)
	assert.Equal(payloads[1][:100], data)
	assert.Equal(300, ci.Length)
	assert.Equal(100, ci.CaptureLength)

	require.Equal(2, r.NInterfaces())
	intf, e := r.Interface(ci.InterfaceIndex)
	require.NoError(e)
	assert.Equal("5", intf.Name)
	assert.Equal(layers.LinkTypeEthernet, intf.LinkType)
}

func TestWriterCloseWhileInspecting(t *testing.T) {
	assert, require := makeAR(t)
	filename := filepath.Join(t.TempDir(), "b.pcapng")

	pool, e := pktmbuf.NewPool(pktmbuf.PoolConfig{Capacity: 255})
	require.NoError(e)
	defer pool.Close()

	w, e := pdump.NewWriter(pdump.WriterConfig{Filename: filename, QueueCapacity: 64})
	require.NoError(e)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range 500 {
				vec, e := pool.Alloc(1)
				if e != nil {
					continue
				}
				vec[0].Append([]byte{0xA0, 0xA1, 0xA2})
				w.Inspect(vec[0], [2]byte{0xA0, 0xA1})
				vec.Close()
			}
		}()
	}
	close(start)
	assert.NotPanics(func() { require.NoError(w.Close()) })
	wg.Wait()
	assert.Equal(0, pool.CountInUse())

	cnt := w.Counters()
	vec, e := pool.Alloc(1)
	require.NoError(e)
	require.NoError(vec[0].Append([]byte{0xB0, 0xB1, 0xB2}))
	w.Inspect(vec[0], [2]byte{0xB0, 0xB1})
	vec.Close()
	assert.Equal(cnt, w.Counters())
}
