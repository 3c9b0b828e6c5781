package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

// offerPayload is the opaque payload carried in each relayed offer. SentAt
// rides along so viewers can measure relay latency.
type offerPayload struct {
	Type   webrtc.SDPType `json:"type"`
	SDP    string         `json:"sdp"`
	SentAt int64          `json:"sentAt"`
}

type frame struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId,omitempty"`
	Role   string          `json:"role,omitempty"`
	Offer  json.RawMessage `json:"offer,omitempty"`
}

type stats struct {
	connected int64
	sent      int64
	received  int64
	errors    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (s *stats) record(d time.Duration) {
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	rooms := flag.Int("rooms", 5, "Number of broadcast rooms")
	viewers := flag.Int("viewers", 4, "Viewers per room")
	offers := flag.Int("offers", 10, "Offers each broadcaster sends")
	interval := flag.Duration("interval", 50*time.Millisecond, "Delay between offers")
	flag.Parse()

	sdp, err := generateOffer()
	if err != nil {
		log.Fatalf("generate offer: %v", err)
	}
	log.Printf("Load test: %d rooms, %d viewers each, %d offers (%d byte SDP)", *rooms, *viewers, *offers, len(sdp.SDP))

	st := &stats{}
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *rooms; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runRoom(*url, fmt.Sprintf("loadtest_%d", id), *viewers, *offers, *interval, sdp, st)
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	sort.Slice(st.latencies, func(i, j int) bool { return st.latencies[i] < st.latencies[j] })

	fmt.Println("\n=== Load Test Results ===")
	fmt.Printf("Duration:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Clients:     %d connected\n", st.connected)
	fmt.Printf("Offers sent: %d\n", st.sent)
	fmt.Printf("Delivered:   %d (expected %d)\n", st.received, st.sent*int64(*viewers))
	fmt.Printf("Errors:      %d\n", st.errors)
	if len(st.latencies) > 0 {
		fmt.Printf("Latency p50: %s\n", percentile(st.latencies, 50))
		fmt.Printf("Latency p95: %s\n", percentile(st.latencies, 95))
		fmt.Printf("Latency p99: %s\n", percentile(st.latencies, 99))
	}
	fmt.Printf("Throughput:  %.0f deliveries/sec\n", float64(st.received)/elapsed.Seconds())
}

// generateOffer builds a real SDP offer so relayed frames have production size.
func generateOffer() (webrtc.SessionDescription, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	defer pc.Close()

	if _, err := pc.CreateDataChannel("loadtest", nil); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return pc.CreateOffer(nil)
}

func runRoom(url, room string, viewers, offers int, interval time.Duration, sdp webrtc.SessionDescription, st *stats) {
	broadcaster, err := dial(url, st)
	if err != nil {
		log.Printf("%s: broadcaster dial error: %v", room, err)
		return
	}
	defer broadcaster.Close()
	go drain(broadcaster)

	if err := writeFrame(broadcaster, frame{Type: "join_room", RoomID: room, Role: "broadcaster"}); err != nil {
		atomic.AddInt64(&st.errors, 1)
		return
	}

	var vwg sync.WaitGroup
	for v := 0; v < viewers; v++ {
		conn, err := dial(url, st)
		if err != nil {
			log.Printf("%s: viewer %d dial error: %v", room, v, err)
			continue
		}
		defer conn.Close()
		if err := writeFrame(conn, frame{Type: "join_room", RoomID: room, Role: "viewer"}); err != nil {
			atomic.AddInt64(&st.errors, 1)
			continue
		}
		vwg.Add(1)
		go func() {
			defer vwg.Done()
			receiveOffers(conn, offers, st)
		}()
	}

	// Give the joins time to land before the first offer.
	time.Sleep(200 * time.Millisecond)

	for j := 0; j < offers; j++ {
		payload, _ := json.Marshal(offerPayload{Type: sdp.Type, SDP: sdp.SDP, SentAt: time.Now().UnixNano()})
		if err := writeFrame(broadcaster, frame{Type: "offer", RoomID: room, Offer: payload}); err != nil {
			atomic.AddInt64(&st.errors, 1)
			return
		}
		atomic.AddInt64(&st.sent, 1)
		time.Sleep(interval)
	}

	vwg.Wait()
	broadcaster.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func dial(url string, st *stats) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		atomic.AddInt64(&st.errors, 1)
		return nil, err
	}
	atomic.AddInt64(&st.connected, 1)
	return conn, nil
}

func writeFrame(conn *websocket.Conn, f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func receiveOffers(conn *websocket.Conn, want int, st *stats) {
	for got := 0; got < want; {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			atomic.AddInt64(&st.errors, 1)
			return
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Type != "offer" {
			continue
		}
		var p offerPayload
		if err := json.Unmarshal(f.Offer, &p); err != nil {
			atomic.AddInt64(&st.errors, 1)
			continue
		}
		st.record(time.Duration(time.Now().UnixNano() - p.SentAt))
		atomic.AddInt64(&st.received, 1)
		got++
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
