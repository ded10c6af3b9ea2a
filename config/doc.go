// SPDX-License-Identifier: MIT

// Package config loads a vaxsim run description from YAML with VAXSIM_*
// environment overrides and assembles it into a driver.
//
// A minimal file:
//
//	run:
//	  seed: 7
//	  horizon: 120
//	  algorithm: sellke
//	epidemic:
//	  model: sir
//	  beta: 0.3
//	  gamma: 0.1
//	  regions:
//	    - name: all
//	      initial: {S: 990, I: 10}
//
// Every omitted field keeps its Default value. Recognised variables are
// VAXSIM_SEED, VAXSIM_HORIZON, VAXSIM_ALGORITHM, VAXSIM_LOG_LEVEL and
// VAXSIM_PACE.
package config
