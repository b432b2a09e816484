package link

import (
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var (
	_ mqtt.Client  = (*mqttMock)(nil)
	_ mqtt.Token   = (*mockToken)(nil)
	_ mqtt.Message = mockMsg{}
)

type mqttMock struct {
	sync.Mutex
	Opt        *mqtt.ClientOptions
	Pub        chan mockMsg
	ConnectErr error
	// Publish tokens complete after Block is closed, nil means immediately
	Block chan struct{}

	subs         map[string]mqtt.MessageHandler
	disconnected bool
}

func newMqttMock() *mqttMock {
	return &mqttMock{
		Pub:  make(chan mockMsg, 32),
		subs: make(map[string]mqtt.MessageHandler, 4),
	}
}

// install replaces client constructor until test ends
func (self *mqttMock) install(t testing.TB) {
	prev := newClient
	newClient = func(opt *mqtt.ClientOptions) mqtt.Client {
		self.Opt = opt
		return self
	}
	t.Cleanup(func() { newClient = prev })
}

// TestPublish delivers message as if device sent it.
func (self *mqttMock) TestPublish(t testing.TB, topic string, payload []byte) {
	self.Lock()
	handler, ok := self.subs[topic]
	self.Unlock()
	if !ok {
		t.Errorf("not subscribed for topic=%s", topic)
		return
	}
	msg := mockMsg{T: topic, P: payload, acked: make(chan struct{})}
	handler(self, msg)
	select {
	case <-msg.acked:
	default:
		t.Errorf("message='%s' handled without Ack()", string(payload))
	}
}

func (self *mqttMock) token(err error) mqtt.Token {
	tok := &mockToken{err: err, done: make(chan struct{})}
	close(tok.done)
	return tok
}

func (self *mqttMock) IsConnected() bool      { return true }
func (self *mqttMock) IsConnectionOpen() bool { return true }

func (self *mqttMock) Connect() mqtt.Token {
	if self.ConnectErr == nil && self.Opt.OnConnect != nil {
		self.Opt.OnConnect(self)
	}
	return self.token(self.ConnectErr)
}

func (self *mqttMock) Disconnect(uint) {
	self.Lock()
	self.disconnected = true
	self.Unlock()
}

func (self *mqttMock) Disconnected() bool {
	self.Lock()
	defer self.Unlock()
	return self.disconnected
}

func (self *mqttMock) Publish(topic string, qos byte, retain bool, payload interface{}) mqtt.Token {
	self.Pub <- mockMsg{T: topic, P: payload.([]byte), Q: qos}
	if self.Block == nil {
		return self.token(nil)
	}
	tok := &mockToken{done: make(chan struct{})}
	go func() {
		<-self.Block
		close(tok.done)
	}()
	return tok
}

func (self *mqttMock) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) mqtt.Token {
	return self.SubscribeMultiple(map[string]byte{topic: qos}, handler)
}

func (self *mqttMock) SubscribeMultiple(filters map[string]byte, handler mqtt.MessageHandler) mqtt.Token {
	self.Lock()
	for topic := range filters {
		self.subs[topic] = handler
	}
	self.Unlock()
	return self.token(nil)
}

func (self *mqttMock) Unsubscribe(topics ...string) mqtt.Token {
	self.Lock()
	for _, topic := range topics {
		delete(self.subs, topic)
	}
	self.Unlock()
	return self.token(nil)
}

func (self *mqttMock) AddRoute(string, mqtt.MessageHandler) { panic("not implemented") }

func (self *mqttMock) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type mockToken struct {
	err  error
	done chan struct{}
}

func (tok *mockToken) Done() <-chan struct{} { return tok.done }
func (tok *mockToken) Error() error          { return tok.err }
func (tok *mockToken) Wait() bool {
	<-tok.done
	return true
}
func (tok *mockToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-tok.done:
		return true
	case <-time.After(d):
		return false
	}
}

type mockMsg struct {
	T     string
	P     []byte
	Q     byte
	acked chan struct{}
}

func (msg mockMsg) Ack() {
	if msg.acked != nil {
		close(msg.acked)
	}
}

func (msg mockMsg) Duplicate() bool   { return false }
func (msg mockMsg) MessageID() uint16 { return 0 }
func (msg mockMsg) Payload() []byte   { return msg.P }
func (msg mockMsg) Qos() byte         { return msg.Q }
func (msg mockMsg) Retained() bool    { return false }
func (msg mockMsg) Topic() string     { return msg.T }
