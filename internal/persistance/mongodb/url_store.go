package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nestjam/tinyurl/internal/domain"
)

const (
	DefaultDatabase   = "tinyurl"     // база данных по умолчанию
	DefaultCollection = "url_mapping" // коллекция по умолчанию

	connectTimeout = 5 * time.Second
)

type urlDocument struct {
	ShortCode string    `bson:"_id"`
	LongURL   string    `bson:"longUrl"`
	CreatedAt time.Time `bson:"createdAt"`
}

// URLStore хранит сокращенные ссылки в коллекции MongoDB.
// Сокращенный код является идентификатором документа.
type URLStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Option определяет опцию настройки хранилища.
type Option func(*config)

type config struct {
	database   string
	collection string
}

// WithDatabase задает имя базы данных.
func WithDatabase(name string) Option {
	return func(c *config) {
		c.database = name
	}
}

// WithCollection задает имя коллекции.
func WithCollection(name string) Option {
	return func(c *config) {
		c.collection = name
	}
}

// New подключается к MongoDB и создает индекс по исходной ссылке.
func New(ctx context.Context, uri string, opts ...Option) (*URLStore, error) {
	const op = "new mongo store"

	cfg := config{database: DefaultDatabase, collection: DefaultCollection}
	for _, opt := range opts {
		opt(&cfg)
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, op)
	}

	collection := client.Database(cfg.database).Collection(cfg.collection)
	_, err = collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "longUrl", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, op)
	}

	return &URLStore{client: client, collection: collection}, nil
}

// Close отключается от MongoDB.
func (u *URLStore) Close(ctx context.Context) error {
	return errors.Wrap(u.client.Disconnect(ctx), "close mongo store")
}

func (u *URLStore) FindByShortCode(ctx context.Context, code string) (domain.URLMapping, error) {
	return u.findOne(ctx, bson.D{{Key: "_id", Value: code}}, "find by short code")
}

func (u *URLStore) FindByLongURL(ctx context.Context, longURL string) (domain.URLMapping, error) {
	return u.findOne(ctx, bson.D{{Key: "longUrl", Value: longURL}}, "find by long url")
}

func (u *URLStore) findOne(ctx context.Context, filter bson.D, op string) (domain.URLMapping, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	var doc urlDocument
	err := u.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return domain.URLMapping{ShortCode: doc.ShortCode, LongURL: doc.LongURL}, nil
}

func (u *URLStore) Insert(ctx context.Context, mapping domain.URLMapping) error {
	const op = "insert mapping"

	_, err := u.collection.InsertOne(ctx, urlDocument{
		ShortCode: mapping.ShortCode,
		LongURL:   mapping.LongURL,
		CreatedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrShortCodeExists
	}
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) GetAll(ctx context.Context) ([]domain.URLMapping, error) {
	const op = "get all mappings"

	cur, err := u.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer func() {
		_ = cur.Close(ctx)
	}()

	var docs []urlDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, op)
	}

	mappings := make([]domain.URLMapping, 0, len(docs))
	for _, doc := range docs {
		mappings = append(mappings, domain.URLMapping{ShortCode: doc.ShortCode, LongURL: doc.LongURL})
	}

	return mappings, nil
}

func (u *URLStore) Delete(ctx context.Context, codes []string) error {
	const op = "delete mappings"

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: codes}}}}
	if _, err := u.collection.DeleteMany(ctx, filter); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) IsAvailable(ctx context.Context) bool {
	return u.client.Ping(ctx, readpref.Primary()) == nil
}
