package main

import (
	"github.com/judwhite/go-svc"
	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/config/parsing"
	"github.com/jxo-me/ddnsync/core/logger"
	"github.com/jxo-me/ddnsync/core/service"
	"github.com/jxo-me/ddnsync/pkg/overwatch"
)

type program struct {
	service service.IDDNSService
	manager overwatch.Manager
}

func (p *program) Init(env svc.Environment) error {
	log := logger.Default()
	s, err := parsing.ParseService(config.Global(), log)
	if err != nil {
		return err
	}
	p.service = s
	p.manager = overwatch.NewAppManager(func(t string, name string, err error) {
		if err != nil {
			log.Errorf("%s service: %s encountered an error: %v", t, name, err)
		}
	})
	if env.IsWindowsService() {
		log.Info("running as a windows service")
	}
	return nil
}

func (p *program) Start() error {
	p.manager.Add(p.service)
	return nil
}

func (p *program) Stop() error {
	log := logger.Default()
	for _, srv := range p.manager.Services() {
		p.manager.Remove(srv.String())
		log.Infof("service %s shutdown", srv.String())
	}
	return nil
}
