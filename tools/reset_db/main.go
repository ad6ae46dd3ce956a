package main

import (
	"bufio"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"moodmeal/config"

	"github.com/go-sql-driver/mysql"
)

// 子表在前
var tables = []string{"mood_entry", "preferences", "friend_request", "friendship", "user"}

func main() {
	yes := flag.Bool("yes", false, "跳过确认")
	flag.Parse()

	cfg := config.LoadConfig()
	if d := strings.ToLower(cfg.Database.Driver); d != "" && d != "mysql" {
		log.Fatalf("reset_db only supports mysql, got driver %q", cfg.Database.Driver)
	}

	dsn := mysql.NewConfig()
	dsn.User = cfg.Database.Username
	dsn.Passwd = cfg.Database.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	dsn.DBName = cfg.Database.Database
	dsn.ParseTime = true
	if cfg.Database.Charset != "" {
		dsn.Params = map[string]string{"charset": cfg.Database.Charset}
	}

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	if !*yes {
		fmt.Printf("\nWARNING: This operation will CLEAR ALL DATA in tables %v!\n", tables)
		fmt.Print("Type 'YES' to confirm: ")
		confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(confirm) != "YES" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS=0")
	defer func() { _, _ = db.Exec("SET FOREIGN_KEY_CHECKS=1") }()

	failed := 0
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		// TRUNCATE 同时重置自增ID
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE `%s`", table)); err != nil {
			var me *mysql.MySQLError
			if errors.As(err, &me) && me.Number == 1146 {
				fmt.Println("Skipped (table does not exist)")
				continue
			}
			failed++
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		fmt.Println("Success")
	}

	if failed > 0 {
		log.Fatalf("Database reset finished with %d failures", failed)
	}
	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, auto-increment IDs reset to 1")
}
