package core

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync/atomic"
	"time"

	"github.com/digineo/go-ping"
	"github.com/embermesh/embermesh/state"
)

// Uplink reports whether this node's router connection currently reaches the
// Internet. HasInternet and RSSI never block; probing happens on a background
// goroutine owned by the implementation.
type Uplink interface {
	HasInternet() bool
	RSSI() int8
	Start(log *slog.Logger)
	Stop()
}

// NewUplink builds the probe configured for this node. Hosts with a scheme
// are checked over HTTP, addresses over ICMP.
func NewUplink(cfg state.GatewayCfg) Uplink {
	if cfg.StaticUplink {
		return &StaticUplink{Internet: true, Rssi: cfg.RouterRSSI}
	}
	if strings.Contains(cfg.InternetCheckHost, "://") {
		return &HTTPUplink{
			URL:     cfg.InternetCheckHost,
			Rssi:    cfg.RouterRSSI,
			Delay:   time.Duration(cfg.InternetCheckInterval) * time.Millisecond,
			Timeout: time.Duration(cfg.InternetCheckTimeout) * time.Millisecond,
		}
	}
	return &PingUplink{
		Host:        cfg.InternetCheckHost,
		Rssi:        cfg.RouterRSSI,
		Delay:       time.Duration(cfg.InternetCheckInterval) * time.Millisecond,
		Timeout:     time.Duration(cfg.InternetCheckTimeout) * time.Millisecond,
		MaxFailures: state.InternetCheckFailures,
	}
}

// StaticUplink always reports the same state.
type StaticUplink struct {
	Internet bool
	Rssi     int8
}

func (s *StaticUplink) HasInternet() bool { return s.Internet }

func (s *StaticUplink) RSSI() int8 { return s.Rssi }

func (s *StaticUplink) Start(log *slog.Logger) {
	// do nothing
}

func (s *StaticUplink) Stop() {
	// do nothing
}

// PingUplink probes a well-known address over ICMP. Connectivity is lost only
// after MaxFailures consecutive failed rounds, so a single dropped probe does
// not flap the gateway role.
type PingUplink struct {
	Host        string
	Rssi        int8
	Delay       time.Duration
	Timeout     time.Duration
	MaxFailures int

	connected atomic.Bool
	running   atomic.Bool
}

func (p *PingUplink) HasInternet() bool { return p.connected.Load() }

func (p *PingUplink) RSSI() int8 { return p.Rssi }

func (p *PingUplink) Stop() {
	p.running.Swap(false)
}

func (p *PingUplink) Start(log *slog.Logger) {
	p.running.Swap(true)
	addr, err := netip.ParseAddr(p.Host)
	if err != nil {
		log.Error("invalid uplink check host", "host", p.Host, "error", err)
		return
	}
	go func() {
		ticker := time.NewTicker(p.Delay)
		defer ticker.Stop()
		failures := 0
		for p.running.Load() {
			bind4 := "0.0.0.0"
			bind6 := "::"
			pinger, err := ping.New(bind4, bind6)
			if err != nil {
				log.Error("failed to start pinger", "error", err)
				return
			}
			for p.running.Load() {
				<-ticker.C
				ipAddr := &net.IPAddr{IP: net.IP(addr.AsSlice())}
				_, err := pinger.PingAttempts(ipAddr, p.Timeout, p.MaxFailures)
				if err != nil {
					failures++
					if failures >= p.MaxFailures {
						p.connected.Store(false)
					}
					log.Debug("uplink probe failed", "host", p.Host, "failures", failures, "error", err)
					pinger.Close()
					break // recreate the pinger
				}
				failures = 0
				p.connected.Store(true)
			}
		}
	}()
}

// HTTPUplink probes a URL, useful behind networks that filter ICMP.
type HTTPUplink struct {
	URL     string
	Rssi    int8
	Delay   time.Duration
	Timeout time.Duration

	connected atomic.Bool
	running   atomic.Bool
}

func (h *HTTPUplink) HasInternet() bool { return h.connected.Load() }

func (h *HTTPUplink) RSSI() int8 { return h.Rssi }

func (h *HTTPUplink) Stop() {
	h.running.Swap(false)
}

func (h *HTTPUplink) Start(log *slog.Logger) {
	h.running.Swap(true)
	client := &http.Client{Timeout: h.Timeout}
	go func() {
		ticker := time.NewTicker(h.Delay)
		defer ticker.Stop()
		for h.running.Load() {
			<-ticker.C
			resp, err := client.Get(h.URL)
			if err != nil {
				h.connected.Store(false)
				log.Debug("uplink probe failed", "url", h.URL, "error", err)
				continue
			}
			ok := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			h.connected.Store(ok)
			if !ok {
				log.Debug("uplink probe failed", "url", h.URL, "status", resp.StatusCode)
			}
		}
	}()
}
