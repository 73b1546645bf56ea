// Пакет connectivity реализует мониторы состояния связи. Ядро опрашивает
// монитор только в момент финализации; переходы online/offline — забота
// внешнего окружения.
package connectivity

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// Manual — монитор с ручным переключением; используется в тестах и
// в демо-режиме без внешней проверки.
type Manual struct {
	mu     sync.RWMutex
	online bool
}

// NewManual создаёт монитор с заданным начальным состоянием.
func NewManual(online bool) *Manual {
	return &Manual{online: online}
}

// IsOnline возвращает текущее состояние связи.
func (m *Manual) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline переключает состояние связи.
func (m *Manual) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

const (
	defaultProbeInterval = 10 * time.Second
	defaultProbeTimeout  = 2 * time.Second
)

// Probe периодически проверяет TCP-доступность заданного адреса
// (например, шлюза синхронизации) и кэширует результат.
type Probe struct {
	addr     string
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
	logger   *log.Entry

	dial func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// NewProbe создаёт probe-монитор; нулевые интервалы заменяются значениями
// по умолчанию. До первой проверки состояние считается офлайн.
func NewProbe(addr string, interval, timeout time.Duration) *Probe {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Probe{
		addr:     addr,
		interval: interval,
		timeout:  timeout,
		logger:   log.WithField("component", "connectivity"),
		dial:     net.DialTimeout,
	}
}

// IsOnline возвращает результат последней проверки.
func (p *Probe) IsOnline() bool {
	return p.online.Load()
}

// Run выполняет проверки до отмены ctx. Первая проверка — сразу при старте.
func (p *Probe) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check()
		}
	}
}

func (p *Probe) check() {
	conn, err := p.dial("tcp", p.addr, p.timeout)
	if err != nil {
		if p.online.Swap(false) {
			p.logger.WithError(err).WithField("addr", p.addr).Warn("connectivity lost")
		}
		return
	}
	_ = conn.Close()
	if !p.online.Swap(true) {
		p.logger.WithField("addr", p.addr).Info("connectivity restored")
	}
}

var (
	_ domain.ConnectivityMonitor = (*Manual)(nil)
	_ domain.ConnectivityMonitor = (*Probe)(nil)
)
