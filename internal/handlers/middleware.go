package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"libranet/internal/models"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing one supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket. A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	go func() {
		for {
			time.Sleep(time.Minute)
			mu.Lock()
			for ip, cl := range clients {
				if time.Since(cl.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, found := clients[ip]
		if !found {
			cl = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		allowed := cl.limiter.Allow()
		mu.Unlock()

		if !allowed {
			log.Printf("[WARN] RateLimit: rejecting request from %s to %s", ip, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by the request structs.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Printf("[WARN] registerValidators: unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("itemtype", validItemType); err != nil {
			log.Printf("[ERROR] registerValidators: failed to register itemtype: %v", err)
		}
	})
}

func validItemType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, t := range models.ItemTypes {
		if string(t) == value {
			return true
		}
	}
	return false
}
