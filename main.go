package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/KiezTask/KT-Backend/internal/activation"
	"github.com/KiezTask/KT-Backend/internal/auth"
	"github.com/KiezTask/KT-Backend/internal/db"
	"github.com/KiezTask/KT-Backend/internal/geo"
	"github.com/KiezTask/KT-Backend/internal/middleware"
	"github.com/KiezTask/KT-Backend/internal/settings"
	"github.com/KiezTask/KT-Backend/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	settings.Init()
	auth.Init()
	geo.Init()
	activation.Init()
	tasks.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/areas", activation.SetupRoutes())
	r.Mount("/tasks", tasks.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
