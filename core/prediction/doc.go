// Package prediction turns a validated delay prediction request into a delay
// in minutes. An Estimator computes the raw value; the Engine wraps the
// estimator selected at start-up, validates incoming bodies and classifies
// every failure as a bad request, an unavailable model or an internal error.
//
// Two estimators exist: a closed-form formula with a random perturbation and
// a model-backed estimator that applies a fitted preprocessor and a linear
// regression loaded from artifacts.
package prediction
