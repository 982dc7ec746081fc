// Command odbcctl is a thin command-line front end over internal/engine,
// exercising the same Go API cmd/libodbc exposes across the C ABI. It
// collapses the teacher's paired examples/server+examples/client demo
// programs into one tool a developer can run directly against a DSN,
// without a message broker or a second process in between.
package main

func main() {
	Execute()
}
