package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// Duration crea un campo con la duración de una operación.
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

// Sistema

// Layer identifica la capa (handler, service, repository, middleware).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Component identifica el módulo dentro de la capa.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op identifica la operación en curso.
func Op(v string) zap.Field { return zap.String("op", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// Login

func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Username(v string) zap.Field { return zap.String("username", v) }
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Outcome es el resultado clasificado de un intento de login.
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// State es el último estado alcanzado por el flujo.
func State(v string) zap.Field { return zap.String("state", v) }

// Endpoint loguea una URL del provider (nunca con query string sensible).
func Endpoint(v string) zap.Field { return zap.String("endpoint", v) }

// Attribute es el nombre de claim usado para mapear el username.
func Attribute(v string) zap.Field { return zap.String("attribute", v) }

// Datos

func Key(v string) zap.Field            { return zap.String("key", v) }
func Driver(v string) zap.Field         { return zap.String("driver", v) }
func Count(v int) zap.Field             { return zap.Int("count", v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
