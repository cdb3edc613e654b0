package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"posflow/pkg/changelog"
	"posflow/pkg/customer"
	custmem "posflow/pkg/customer/memory"
	"posflow/pkg/item"
	itemmem "posflow/pkg/item/memory"
	"posflow/pkg/logger"
	"posflow/pkg/metrics"
	"posflow/pkg/order"
	ordermem "posflow/pkg/order/memory"
	orderpg "posflow/pkg/order/postgres"
	"posflow/pkg/otel"
	"posflow/pkg/pos"
	"posflow/pkg/snapshot"
)

var (
	log         *logger.Logger
	tracer      trace.Tracer
	redisClient *redis.Client

	customers customer.Repository
	items     item.Repository
	orders    order.Repository

	svc       *pos.Service
	snapStore snapshot.Store
	auditLog  changelog.Writer
	stats     *metrics.Registry
)

// @title posflow API
// @version 1.0
// @description Point-of-sale core: customers, inventory items and order placement
// @host localhost:8443
// @BasePath /
func main() {
	log = logger.New(os.Stdout, logger.LevelInfo, "posflow", otel.GetTraceID)

	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "posflow",
		Host:        envOr("OTEL_HOST", "localhost:4317"),
		Probability: 1.0,
	})
	if err != nil {
		log.Error(context.Background(), "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())
	tracer = tp.Tracer("posflow")

	custRepo := custmem.New()
	itemRepo := itemmem.New()
	customers = custRepo
	items = itemRepo

	var orderMem *ordermem.Repository
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Error(context.Background(), "db connect", "error", err)
			os.Exit(1)
		}
		if _, err := db.Exec(orderpg.Schema); err != nil {
			log.Error(context.Background(), "create orders table", "error", err)
			os.Exit(1)
		}
		orders = orderpg.New(db)
	} else {
		orderMem = ordermem.New()
		orders = orderMem
	}

	snapStore, err = snapshot.NewPebbleStore(envOr("SNAPSHOT_DIR", "data/snapshot"))
	if err != nil {
		log.Error(context.Background(), "open snapshot store", "error", err)
		os.Exit(1)
	}
	defer snapStore.Close()
	snap, err := snapStore.Load(context.Background())
	if err != nil {
		log.Error(context.Background(), "load snapshot", "error", err)
		os.Exit(1)
	}
	itemRepo.LoadAll(snap.Items)
	if orderMem != nil {
		orderMem.LoadAll(snap.Orders)
	}
	log.Info(context.Background(), "snapshot restored", "items", len(snap.Items), "orders", len(snap.Orders))

	fileLog, err := changelog.NewFileWriter(envOr("CHANGELOG_DIR", "data/changelog"), "orders.jsonl")
	if err != nil {
		log.Error(context.Background(), "open changelog", "error", err)
		os.Exit(1)
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		auditLog = changelog.NewMultiWriter(fileLog,
			changelog.NewKafkaWriter(brokers, envOr("KAFKA_TOPIC", "pos-orders")))
	} else {
		auditLog = fileLog
	}

	svc = pos.NewService(customers, items, orders)
	stats = metrics.NewRegistry()
	redisClient = redis.NewClient(&redis.Options{Addr: envOr("REDIS_ADDR", "localhost:6379")})

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)
	r.Handle("/metrics", stats.Handler()).Methods(http.MethodGet)

	cust := r.PathPrefix("/customers").Subrouter()
	cust.Use(authMiddleware)
	cust.HandleFunc("", createCustomerHandler).Methods(http.MethodPost)
	cust.HandleFunc("", listCustomersHandler).Methods(http.MethodGet)
	cust.HandleFunc("/{id}", getCustomerHandler).Methods(http.MethodGet)
	cust.HandleFunc("/{id}", updateCustomerHandler).Methods(http.MethodPut)
	cust.HandleFunc("/{id}", deleteCustomerHandler).Methods(http.MethodDelete)

	inv := r.PathPrefix("/items").Subrouter()
	inv.Use(authMiddleware)
	inv.HandleFunc("", createItemHandler).Methods(http.MethodPost)
	inv.HandleFunc("", listItemsHandler).Methods(http.MethodGet)
	inv.HandleFunc("/{id}", getItemHandler).Methods(http.MethodGet)
	inv.HandleFunc("/{id}", updateItemHandler).Methods(http.MethodPut)
	inv.HandleFunc("/{id}", deleteItemHandler).Methods(http.MethodDelete)

	ord := r.PathPrefix("/orders").Subrouter()
	ord.Use(authMiddleware)
	ord.HandleFunc("", placeOrderHandler).Methods(http.MethodPost)
	ord.HandleFunc("", listOrdersHandler).Methods(http.MethodGet)
	ord.HandleFunc("/{id}", getOrderHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	log.Info(context.Background(), "listening", "addr", ":8443")
	if err := http.ListenAndServeTLS(":8443", "certs/server.crt", "certs/server.key", r); err != nil {
		log.Error(context.Background(), "server closed", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// authMiddleware ensures a valid session exists.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := redisClient.Get(r.Context(), "session:"+c.Value).Result()
		if err != nil || user == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ctxKey int

const userKey ctxKey = 1
