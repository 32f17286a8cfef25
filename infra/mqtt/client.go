package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/ridepool/core/mqtt"
	"github.com/kilianp07/ridepool/core/monitoring"
	"github.com/kilianp07/ridepool/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	MaxRetries int             `json:"max_retries"`
	BackoffMS  int             `json:"backoff_ms"`
	Topics     Topics          `json:"topics"`
	// Workers bounds the requests handled concurrently.
	Workers   int         `json:"workers"`
	TLSConfig *tls.Config `json:"-"`
}

// Topics names the request and reply topics.
type Topics struct {
	MatchRequest   string `json:"match_request"`
	MatchReply     string `json:"match_reply"`
	RefreshRequest string `json:"refresh_request"`
	RefreshReply   string `json:"refresh_reply"`
}

// SetDefaults fills unset topics, retries and workers.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "ridepool"
	}
	if c.Topics.MatchRequest == "" {
		c.Topics.MatchRequest = coremqtt.TopicMatchRequest
	}
	if c.Topics.MatchReply == "" {
		c.Topics.MatchReply = coremqtt.TopicMatchReply
	}
	if c.Topics.RefreshRequest == "" {
		c.Topics.RefreshRequest = coremqtt.TopicRefreshRequest
	}
	if c.Topics.RefreshReply == "" {
		c.Topics.RefreshReply = coremqtt.TopicRefreshReply
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// Validate checks the broker address and QoS levels.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt: qos %q must be 0, 1 or 2", k)
		}
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes and subscribes through Eclipse Paho. Subscriptions
// are restored on every reconnect.
type PahoClient struct {
	cli pahoClient
	qos map[string]byte

	mu         sync.Mutex
	handlers   map[string]paho.MessageHandler
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		handlers:   make(map[string]paho.MessageHandler),
		logger:     log,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		pc.mu.Lock()
		defer pc.mu.Unlock()
		for topic, h := range pc.handlers {
			if token := c.Subscribe(topic, pc.qosFor("request"), h); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// Subscribe registers fn for topic. The payload slice must not be retained
// after fn returns.
func (p *PahoClient) Subscribe(topic string, fn func(payload []byte)) error {
	h := func(_ paho.Client, msg paho.Message) { fn(msg.Payload()) }
	p.mu.Lock()
	p.handlers[topic] = h
	p.mu.Unlock()
	if p.cli == nil {
		return coremqtt.ErrNotConnected
	}
	token := p.cli.Subscribe(topic, p.qosFor("request"), h)
	token.Wait()
	return token.Error()
}

// Publish sends payload to topic, retrying with exponential backoff.
// Failures after the last attempt are captured.
func (p *PahoClient) Publish(topic string, payload []byte) error {
	if p.cli == nil {
		return coremqtt.ErrNotConnected
	}
	qos := p.qosFor("reply")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	monitoring.Capture(publishErr, map[string]string{"module": "mqtt", "topic": topic}, map[string]any{"attempts": p.maxRetries + 1})
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
