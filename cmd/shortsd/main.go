package main

import (
	"flag"
	"log"
	"os"

	"github.com/ivlev/shorts2video/internal/api"
	"github.com/ivlev/shorts2video/internal/config"
)

func main() {
	configPtr := flag.String("config", "", "YAML с настройками по умолчанию для запросов")
	addrPtr := flag.String("addr", "", "Адрес HTTP сервера (по умолчанию :8080 или $SHORTS_ADDR)")
	flag.Parse()

	file, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}
	config.LoadEnv(&file)

	addr := *addrPtr
	if addr == "" {
		addr = os.Getenv("SHORTS_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	log.Printf("[*] Planner API listening on %s", addr)
	if err := api.NewRouterWithDefaults(file).Run(addr); err != nil {
		log.Fatalf("[-] Ошибка сервера: %v", err)
	}
}
