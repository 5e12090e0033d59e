package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter wires the REST surface, the websocket endpoints and the
// uploaded-image file server.
func NewRouter(h *Handlers, ws *WSHandler, storageRoot string) http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.AllowAll().Handler)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/api", func(r chi.Router) {
		r.Route("/quizzes", func(r chi.Router) {
			r.Get("/", h.ListQuizzes)
			r.Post("/", h.CreateQuiz)

			r.Route("/{quizID}", func(r chi.Router) {
				r.Get("/", h.GetQuiz)
				r.Patch("/", h.UpdateQuiz)

				r.Post("/questions", h.AddQuestion)
				r.Post("/import", h.ImportThemeQuestions)

				r.Post("/launch", h.LaunchQuiz)
				r.Post("/start", h.StartQuiz)
				r.Post("/finish", h.FinishQuiz)
				r.Post("/advance", h.AdvanceStage)
				r.Post("/autoplay", h.SetAutoPlay)

				r.Post("/join", h.JoinQuiz)
				r.Post("/resume", h.ResumeQuiz)
				r.Get("/participants", h.Roster)

				r.Get("/stats", h.QuizStats)
				r.Get("/qr", h.JoinQR)
			})
		})

		r.Route("/questions/{questionID}", func(r chi.Router) {
			r.Delete("/", h.DeleteQuestion)
			r.Get("/responses", h.QuestionResponses)
			r.Get("/participant-responses", h.ParticipantResponses)
		})

		r.Route("/themes", func(r chi.Router) {
			r.Get("/", h.ListThemes)
			r.Post("/", h.CreateTheme)
			r.Get("/{themeID}/questions", h.ListThemeQuestions)
			r.Post("/{themeID}/questions", h.AddThemeQuestion)
		})

		r.Post("/uploads", h.UploadImage)
	})

	mux.Get("/ws/play", ws.ServePlay)
	mux.Get("/ws/present", ws.ServePresent)

	if storageRoot != "" {
		fs := http.StripPrefix("/storage/", http.FileServer(http.Dir(storageRoot)))
		mux.Get("/storage/*", fs.ServeHTTP)
	}

	return mux
}
