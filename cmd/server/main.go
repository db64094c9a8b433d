package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"salon-scheduler/internal/auth"
	"salon-scheduler/internal/config"
	gweb "salon-scheduler/internal/grpcweb"
	"salon-scheduler/internal/handler"
	"salon-scheduler/internal/middleware"
	"salon-scheduler/internal/region"
	"salon-scheduler/internal/store"
)

func main() {
	// server hash-password <pw> prints a value for OPERATOR_PASSWORD_HASH
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			log.Fatalf("hash: %v", err)
		}
		fmt.Println(hash)
		return
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// storage
	mgr, err := region.Open(context.Background(), cfg.RegionOptions())
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer mgr.Close()
	log.Printf("store: %s medium ready", cfg.StoreDriver)

	st := store.New(mgr)
	h := handler.New(st, handler.Operator{
		Email:        cfg.OperatorEmail,
		PasswordHash: cfg.OperatorPasswordHash,
	}, cfg.JWTSecret)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst)
	defer rl.Close()
	srv := grpc.NewServer(
		grpc.ForceServerCodec(handler.RawCodec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Logging(),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
	)
	handler.Register(srv, h)

	// start grpc on TCP
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	go func() {
		log.Printf("grpc on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.Printf("grpc: %v", err)
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:" + cfg.GRPCPort)
	if err != nil {
		log.Fatalf("bridge: %v", err)
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:    ":" + cfg.WebPort,
		Handler: bridge.Handler(),
	}
	go func() {
		log.Printf("grpc-web on :%s", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Println("shutting down")
	httpSrv.Close()
	srv.GracefulStop()
}
