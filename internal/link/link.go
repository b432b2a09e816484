// Package link is local MQTT session with one appliance.
// Device publishes status on <product_type>/<serial>/status/current
// and listens for commands on <product_type>/<serial>/command.
package link

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/temoto/airlink/credential"
	"github.com/temoto/airlink/log2"
	"github.com/temoto/airlink/protocol"
	"github.com/temoto/alive/v2"
)

const (
	DefaultKeepalive      = 30 * time.Second
	DefaultNetworkTimeout = 10 * time.Second

	qos = 1
	// paho Disconnect quiesce, milliseconds
	disconnectQuiesce = 250
)

// Handler receives every successfully decoded device message.
// Called from transport goroutine, must not block for long.
type Handler func(ctx context.Context, serial string, m protocol.Message)

type Options struct {
	ProductType    string
	Broker         string
	Credentials    credential.Local
	Keepalive      time.Duration
	NetworkTimeout time.Duration
	OnMessage      Handler
}

type Session struct {
	alive *alive.Alive
	ctx   context.Context
	log   *log2.Log
	m     mqtt.Client
	opt   Options
	now   func() time.Time

	topicCurrent    string
	topicConnection string
	topicCommand    string
}

// replaced in tests
var newClient = mqtt.NewClient

// SetTransportLog routes paho internal messages into log.
// Process wide, paho loggers are package variables.
func SetTransportLog(log *log2.Log) {
	if log == nil {
		return
	}
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if log.Enabled(log2.LDebug) {
		mqtt.DEBUG = log
	}
}

func Topic(productType, serial, suffix string) string {
	return fmt.Sprintf("%s/%s/%s", productType, serial, suffix)
}

// Open connects to device broker and subscribes to status topics.
// Logger is taken from ctx, see log2.ContextWithLog.
func Open(ctx context.Context, opt Options) (*Session, error) {
	serial := opt.Credentials.Serial
	if serial == "" || opt.Credentials.AccessPointPasswordHash == "" {
		return nil, errors.NotValidf("link credentials")
	}
	if opt.ProductType == "" {
		return nil, errors.NotValidf("link serial=%s product_type empty", serial)
	}
	if opt.Broker == "" {
		return nil, errors.NotValidf("link serial=%s broker empty", serial)
	}
	if opt.OnMessage == nil {
		return nil, errors.NotValidf("code error link OnMessage=nil")
	}
	if opt.Keepalive == 0 {
		opt.Keepalive = DefaultKeepalive
	}
	if opt.NetworkTimeout == 0 {
		opt.NetworkTimeout = DefaultNetworkTimeout
	}

	self := &Session{
		alive: alive.NewAlive(),
		ctx:   ctx,
		log:   log2.ContextValueLogger(ctx),
		opt:   opt,
		now:   time.Now,

		topicCurrent:    Topic(opt.ProductType, serial, "status/current"),
		topicConnection: Topic(opt.ProductType, serial, "status/connection"),
		topicCommand:    Topic(opt.ProductType, serial, "command"),
	}
	clientID := "airlink-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	mopt := mqtt.NewClientOptions().
		AddBroker(opt.Broker).
		SetClientID(clientID).
		SetUsername(serial).
		SetPassword(opt.Credentials.AccessPointPasswordHash).
		SetCleanSession(true).
		SetKeepAlive(opt.Keepalive).
		SetPingTimeout(opt.NetworkTimeout).
		SetConnectTimeout(opt.NetworkTimeout).
		SetWriteTimeout(opt.NetworkTimeout).
		SetOrderMatters(false).
		SetAutoReconnect(true).
		SetDefaultPublishHandler(self.messageHandler).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	self.m = newClient(mopt)

	self.log.Debugf("link serial=%s connecting broker=%s client=%s", serial, opt.Broker, clientID)
	if err := self.wait(ctx, self.m.Connect()); err != nil {
		self.alive.Stop()
		self.m.Disconnect(0)
		return nil, errors.Annotatef(err, "link serial=%s connect broker=%s", serial, opt.Broker)
	}
	return self, nil
}

func (self *Session) Serial() string { return self.opt.Credentials.Serial }

// StopChan is closed when Close is called.
func (self *Session) StopChan() <-chan struct{} { return self.alive.StopChan() }

// Send encodes and publishes one command.
// Returns after broker acknowledged, ctx is done or session closed.
func (self *Session) Send(ctx context.Context, cmd protocol.Command) error {
	b, err := protocol.Encode(cmd)
	if err != nil {
		return errors.Annotatef(err, "link serial=%s encode", self.Serial())
	}
	if !self.alive.Add(1) {
		return errors.Errorf("link serial=%s closed", self.Serial())
	}
	defer self.alive.Done()
	self.log.Debugf("link serial=%s send %s", self.Serial(), b)
	if err = self.wait(ctx, self.m.Publish(self.topicCommand, qos, false, b)); err != nil {
		return errors.Annotatef(err, "link serial=%s publish msg=%s", self.Serial(), cmd.Kind())
	}
	return nil
}

func (self *Session) RequestCurrentState(ctx context.Context) error {
	return self.Send(ctx, protocol.RequestCurrentState{Time: self.now()})
}

func (self *Session) RequestSensorData(ctx context.Context) error {
	return self.Send(ctx, protocol.RequestSensorData{Time: self.now()})
}

// Close is safe to call multiple times.
func (self *Session) Close() error {
	if !self.alive.IsRunning() {
		self.alive.Wait()
		return nil
	}
	self.alive.Stop()
	self.alive.Wait()
	self.m.Disconnect(disconnectQuiesce)
	self.log.Debugf("link serial=%s closed", self.Serial())
	return nil
}

func (self *Session) wait(ctx context.Context, tok mqtt.Token) error {
	timer := time.NewTimer(self.opt.NetworkTimeout)
	defer timer.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-self.alive.StopChan():
		return errors.Errorf("link closed")
	case <-timer.C:
		return errors.Timeoutf("network_timeout=%v", self.opt.NetworkTimeout)
	}
}

func (self *Session) onConnectHandler(c mqtt.Client) {
	self.log.Infof("link serial=%s connected", self.Serial())
	topics := map[string]byte{self.topicCurrent: qos, self.topicConnection: qos}
	if tok := c.SubscribeMultiple(topics, self.messageHandler); tok.Wait() && tok.Error() != nil {
		self.log.Errorf("link serial=%s subscribe err=%v", self.Serial(), tok.Error())
	}
}

func (self *Session) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("link serial=%s connection lost err=%v", self.Serial(), err)
}

// messageHandler never stops the session: bad messages are logged and skipped.
func (self *Session) messageHandler(c mqtt.Client, msg mqtt.Message) {
	defer msg.Ack()
	if !self.alive.Add(1) {
		return
	}
	defer self.alive.Done()

	payload := msg.Payload()
	m, err := protocol.Decode(payload)
	switch {
	case err == nil:
		self.log.Debugf("link serial=%s topic=%s msg=%s", self.Serial(), msg.Topic(), m.Kind())
		self.opt.OnMessage(self.ctx, self.Serial(), m)
	case protocol.IsUnrecognizedKind(err):
		self.log.Debugf("link serial=%s topic=%s skip %v", self.Serial(), msg.Topic(), err)
	default:
		self.log.Errorf("link serial=%s topic=%s payload=%q err=%v", self.Serial(), msg.Topic(), payload, err)
	}
}
