package capture

import (
	"io"
	"sync"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"

	sniffer "github.com/fjferrer/esp32-bluetooth-classic-sniffer"
)

// SerialConfig selects the UART the sniffer bridge is attached to.
type SerialConfig struct {
	Port string
	Baud uint
}

// Serial reads an H4 stream from a UART and emits assembled frames on
// the channel passed to OpenSerial.
type Serial struct {
	sp   io.ReadWriteCloser
	asm  *Assembler
	log  sniffer.Logger
	done chan struct{}
	cmu  sync.Mutex
}

func OpenSerial(cfg SerialConfig, out chan<- []byte) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("no serial port given")
	}
	if cfg.Baud == 0 {
		cfg.Baud = 921600
	}

	sp, err := serial.Open(serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              cfg.Baud,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't open serial port")
	}

	s := &Serial{
		sp:   sp,
		asm:  NewAssembler(out),
		log:  sniffer.GetLogger().ChildLogger(map[string]interface{}{"port": cfg.Port}),
		done: make(chan struct{}),
	}
	go s.rxLoop()
	return s, nil
}

func (s *Serial) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
		return errors.Wrap(s.sp.Close(), "can't close serial port")
	}
}

func (s *Serial) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-s.done:
			s.log.Debug("rx loop stopped")
			return
		default:
		}

		n, err := s.sp.Read(tmp)
		if err != nil || n == 0 {
			continue
		}
		s.asm.Assemble(tmp[:n])
	}
}
