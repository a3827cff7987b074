package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize  = 4096
	mongoBatchSize  = 50
	mongoFlushEvery = 2 * time.Second
)

// LogDocument is one record as stored in MongoDB. Group names become
// dotted keys in Attrs.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoOptions configures NewMongoHandler. TTL > 0 adds an expiry index on
// time so old records age out.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	TTL        time.Duration
	Level      slog.Leveler
}

type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// mongoSink is shared by a handler and every WithAttrs/WithGroup child.
type mongoSink struct {
	col     inserter
	client  *mongo.Client
	queue   chan LogDocument
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// MongoHandler is a slog.Handler that writes to MongoDB in batches from a
// background goroutine. Records arriving while the queue is full are
// counted and dropped.
type MongoHandler struct {
	sink   *mongoSink
	level  slog.Leveler
	attrs  bson.M
	reqID  string
	prefix string
}

func NewMongoHandler(ctx context.Context, o MongoOptions) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.URI).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	col := client.Database(o.Database).Collection(o.Collection)
	idx := mongo.IndexModel{Keys: bson.D{{Key: "time", Value: -1}}}
	if o.TTL > 0 {
		idx.Options = options.Index().SetExpireAfterSeconds(int32(o.TTL.Seconds()))
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		L.Warn("logger: mongo index", "collection", o.Collection, "error", err)
	}

	level := o.Level
	if level == nil {
		level = slog.LevelInfo
	}
	h := newMongoHandler(col, level)
	h.sink.client = client
	return h, nil
}

func newMongoHandler(col inserter, level slog.Leveler) *MongoHandler {
	s := &mongoSink{
		col:   col,
		queue: make(chan LogDocument, mongoQueueSize),
		stop:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return &MongoHandler{sink: s, level: level, attrs: bson.M{}}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{
		Time:      r.Time,
		Level:     r.Level.String(),
		Msg:       r.Message,
		RequestID: h.reqID,
		Attrs:     make(bson.M, len(h.attrs)+r.NumAttrs()),
	}
	for k, v := range h.attrs {
		doc.Attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "request_id" && h.prefix == "" {
			doc.RequestID = a.Value.String()
			return true
		}
		flatten(doc.Attrs, h.prefix, a)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}

	select {
	case h.sink.queue <- doc:
	default:
		h.sink.dropped.Add(1)
	}
	return nil
}

// flatten writes a into m, expanding nested groups into dotted keys.
func flatten(m bson.M, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range v.Group() {
			flatten(m, p, g)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if err, ok := v.Any().(error); ok {
		m[prefix+a.Key] = err.Error()
		return
	}
	m[prefix+a.Key] = v.Any()
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make(bson.M, len(h.attrs)+len(attrs))
	for k, v := range h.attrs {
		next.attrs[k] = v
	}
	for _, a := range attrs {
		if a.Key == "request_id" && h.prefix == "" {
			next.reqID = a.Value.String()
			continue
		}
		flatten(next.attrs, h.prefix, a)
	}
	return &next
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// Dropped reports how many records were discarded on a full queue.
func (h *MongoHandler) Dropped() int64 { return h.sink.dropped.Load() }

// Close flushes what is queued and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	s := h.sink
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
		if s.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.client.Disconnect(ctx)
		}
	})
}

func (s *mongoSink) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(mongoFlushEvery)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Logging a failed insert would feed straight back into this sink.
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) == mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case doc := <-s.queue:
					batch = append(batch, doc)
					if len(batch) == mongoBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
