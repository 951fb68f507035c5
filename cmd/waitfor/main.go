package main

import (
	"flag"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

func main() {
	host := flag.String("host", "localhost", "the host to connect to")
	port := flag.String("port", "27017", "the port to connect to")
	attempts := flag.Uint64("attempts", 20, "connection attempts before giving up")
	flag.Parse()

	addr := net.JoinHostPort(*host, *port)
	dial := func() error {
		conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
		if err != nil {
			log.WithError(err).WithField("addr", addr).Info("connection not yet available")
			return err
		}
		return conn.Close()
	}
	var retries uint64
	if *attempts > 1 {
		retries = *attempts - 1
	}
	if err := backoff.Retry(dial, backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), retries)); err != nil {
		log.WithError(err).WithField("addr", addr).Fatal("could not open TCP connection after max attempts")
	}
	log.WithField("addr", addr).Info("TCP connection available")
}
