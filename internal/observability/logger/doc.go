// Package logger expone el logger zap del proceso y el logger "scoped" por request.
//
// main inicializa una sola vez con Init; los middlewares HTTP inyectan en el
// contexto un logger con request_id/method/path y los servicios lo extienden:
//
//	log := logger.From(ctx).With(
//	    logger.Layer("service"),
//	    logger.Component("flow"),
//	    logger.Op("Attempt"),
//	)
//	log.Warn("login aborted", logger.Outcome("exchange_failed"), logger.Err(err))
//
// "dev" escribe consola con colores, "prod" JSON.
package logger
