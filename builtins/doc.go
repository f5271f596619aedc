// Package builtins provides host functions commonly installed into a script
// heap: print, assert and a console object backed by a zap logger.
//
//	e, _ := engine.New()
//	defer e.Close()
//	_ = builtins.Install(e, &builtins.Options{Stdout: os.Stdout})
//	_ = e.Eval(`print("hello", 1 + 1); console.info("ready")`)
package builtins
