// Package idtoken decodifica y valida id_tokens compactos (header.payload.signature).
//
// Decode es agnóstico de la firma: solo exige tres segmentos base64url y un
// payload JSON objeto. Verifier agrega firma (si hay KeySet), exp/nbf con
// leeway, y issuer/audience cuando se esperan.
package idtoken
