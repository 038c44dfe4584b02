// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commands defines command records and their steps, and converts them
// to and from the YAML definition layout.
//
//	oc:
//	  description: open the project
//	  timeout: 30
//	  steps:
//	    - command: ssh dev
//	    - expect: {pattern: "\\$ ", timeout: 5}
//	    - send: cd /srv/app
//	    - press_key: enter
package commands
