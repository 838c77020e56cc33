// Package main StayIn API.
//
// @title           StayIn API
// @version         1.0
// @description     Vacation rental marketplace: listings, reservations, payments, reviews.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"stayin/app/echoServer"
	authctrl "stayin/app/echoServer/controller/auth"
	favoritectrl "stayin/app/echoServer/controller/favorite"
	listingctrl "stayin/app/echoServer/controller/listing"
	paymentctrl "stayin/app/echoServer/controller/payment"
	reservationctrl "stayin/app/echoServer/controller/reservation"
	reviewctrl "stayin/app/echoServer/controller/review"
	userctrl "stayin/app/echoServer/controller/user"
	"stayin/app/echoServer/validation"
	"stayin/config"
	eventsrepo "stayin/repository/events"
	favoriterepo "stayin/repository/favorite"
	listingrepo "stayin/repository/listing"
	mailrepo "stayin/repository/mail"
	paymentrepo "stayin/repository/payment"
	reservationrepo "stayin/repository/reservation"
	reviewrepo "stayin/repository/review"
	userrepo "stayin/repository/user"
	verificationrepo "stayin/repository/verification"
	authsvc "stayin/service/auth"
	favoritesvc "stayin/service/favorite"
	listingsvc "stayin/service/listing"
	notifysvc "stayin/service/notify"
	paymentsvc "stayin/service/payment"
	reservationsvc "stayin/service/reservation"
	reviewsvc "stayin/service/review"
	usersvc "stayin/service/user"
	"stayin/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB over pgx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis: password-reset codes
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	defer rdb.Close()

	// repos
	ur := userrepo.New(db)
	lr := listingrepo.New(db)
	fr := favoriterepo.New(db)
	rr := reservationrepo.New(db)
	pr := paymentrepo.New(db)
	rvr := reviewrepo.New(db)
	vr := verificationrepo.New(rdb)

	var mr mailrepo.Repo
	if cfg.MailAPIURL != "" {
		mr = mailrepo.NewHTTP(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	} else {
		mr = mailrepo.NewLog(log)
	}

	var ev eventsrepo.Repo
	if cfg.AmqpURL != "" {
		ev = eventsrepo.NewAMQP(cfg.AmqpURL)
	} else {
		ev = eventsrepo.NewNoop()
	}

	// services
	as := authsvc.New(ur, vr, mr, cfg.JWTSecret, nil)
	us := usersvc.New(ur)
	lsv := listingsvc.New(lr)
	fsv := favoritesvc.New(fr, lr)
	rsv := reservationsvc.New(db, rr, ur, ev)
	psv := paymentsvc.New(db, pr, rr, ur, ev)
	rvsv := reviewsvc.New(rvr, rr, lr)

	// notifier drains the event queue into email
	if cfg.AmqpURL != "" {
		go notifysvc.NewConsumer(cfg.AmqpURL, mr, log).Run(ctx)
	}

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, Log: log}
	listingC := &listingctrl.Controller{Svc: lsv, V: v, Log: log}
	favoriteC := &favoritectrl.Controller{Svc: fsv, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rsv, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: psv, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: rvsv, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		User:        userC,
		Listing:     listingC,
		Favorite:    favoriteC,
		Reservation: reservationC,
		Payment:     paymentC,
		Review:      reviewC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
